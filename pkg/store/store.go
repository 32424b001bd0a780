// Package store provides the typed key-value cache editors use to coordinate
// without referencing each other.
//
// A Store lives exactly as long as the processor that owns it. Keys carry the
// type of the value they address, so two subsystems that happen to pick the
// same textual name for different value types never observe each other's
// entries. There is no eviction; the last writer wins.
//
// Usage:
//
//	var pendingKey = store.NewKey[*Plan]("acme.pending-plan")
//
//	store.Set(s, pendingKey, plan)
//	if plan, ok := store.TryGet(s, pendingKey); ok {
//		// ...
//	}
package store

import "fmt"

// Key addresses a value of type T in a Store.
type Key[T any] struct {
	name string
}

// NewKey creates a key for values of type T.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the textual part of the key.
func (k Key[T]) Name() string {
	return k.name
}

// String implements fmt.Stringer
func (k Key[T]) String() string {
	var zero T
	return fmt.Sprintf("%s(%T)", k.name, zero)
}

// Store maps typed keys to values. It is not safe for concurrent use; the
// owning processor drives it from a single goroutine.
type Store struct {
	values map[any]any
}

// New creates an empty store
func New() *Store {
	return &Store{values: make(map[any]any)}
}

// Set stores value under key, replacing any previous value.
func Set[T any](s *Store, key Key[T], value T) {
	s.values[key] = value
}

// TryGet returns the value stored under key and whether it was present.
func TryGet[T any](s *Store, key Key[T]) (T, bool) {
	v, ok := s.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	t, _ := v.(T)
	return t, true
}

// Delete removes the value stored under key and reports whether one existed.
func Delete[T any](s *Store, key Key[T]) bool {
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	return true
}

// Len returns the number of stored values
func (s *Store) Len() int {
	return len(s.values)
}
