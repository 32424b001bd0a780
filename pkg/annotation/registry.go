package annotation

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the marker type hierarchy and factories.
type Registry[P, A any] struct {
	mu        sync.RWMutex
	bases     map[string]string
	factories map[string]Factory[P, A]
}

// NewRegistry creates a registry containing only RootType.
func NewRegistry[P, A any]() *Registry[P, A] {
	return &Registry[P, A]{
		bases:     map[string]string{RootType: ""},
		factories: make(map[string]Factory[P, A]),
	}
}

// Define adds a type deriving from base. Redefining a type with the same base
// is a no-op; changing its base is an error. base may name a type that is not
// defined (yet); such a chain simply does not reach RootType.
func (r *Registry[P, A]) Define(name, base string) error {
	if name == "" {
		return fmt.Errorf("cannot define type with empty name")
	}
	if name == RootType {
		return fmt.Errorf("cannot redefine root type %s", RootType)
	}
	if base == "" {
		return fmt.Errorf("type %s: base type is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bases[name]; ok {
		if existing != base {
			return fmt.Errorf("type %s already defined with base %s", name, existing)
		}
		return nil
	}
	r.bases[name] = base
	return nil
}

// Register defines name with base and attaches its factory.
func (r *Registry[P, A]) Register(name, base string, factory Factory[P, A]) error {
	if factory == nil {
		return fmt.Errorf("type %s: nil factory", name)
	}
	if err := r.Define(name, base); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("factory already registered: %s", name)
	}
	r.factories[name] = factory
	return nil
}

// Base returns the declared base of name
func (r *Registry[P, A]) Base(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base, ok := r.bases[name]
	return base, ok
}

// IsMarker reports whether name's base chain reaches RootType. Unknown types,
// chains ending at an unrelated top type and cyclic chains are not markers.
func (r *Registry[P, A]) IsMarker(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.chain(name)
	return ok
}

// FactoryFor returns the factory of name or of its nearest ancestor that has
// one. It only answers for marker types.
func (r *Registry[P, A]) FactoryFor(name string) (Factory[P, A], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, ok := r.chain(name)
	if !ok {
		return nil, false
	}
	for _, t := range chain {
		if f, ok := r.factories[t]; ok {
			return f, true
		}
	}
	return nil, false
}

// Types returns all defined marker types, sorted
func (r *Registry[P, A]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.bases))
	for name := range r.bases {
		if name == RootType {
			continue
		}
		if _, ok := r.chain(name); ok {
			types = append(types, name)
		}
	}
	sort.Strings(types)
	return types
}

// chain returns name and its ancestors up to (excluding) RootType when the
// chain reaches it. Callers hold the lock.
func (r *Registry[P, A]) chain(name string) ([]string, bool) {
	visited := make(map[string]bool)
	var chain []string
	for cur := name; ; {
		if cur == RootType {
			return chain, len(chain) > 0
		}
		if visited[cur] {
			return nil, false
		}
		visited[cur] = true

		base, ok := r.bases[cur]
		if !ok || base == "" {
			return nil, false
		}
		chain = append(chain, cur)
		cur = base
	}
}
