package annotation

import (
	"fmt"
	"strconv"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/editor"
)

// RootType is the marker type every honored annotation must derive from.
const RootType = "weave.Editor"

// OrderArg is the argument key conventionally holding the ordering integer.
const OrderArg = "order"

// Declared is an annotation as written on the program, before construction.
type Declared struct {
	Type     string
	Args     map[string]string
	Raw      string
	Location diag.Location
}

// Arg returns the argument stored under key
func (d Declared) Arg(key string) string {
	return d.Args[key]
}

// ArgOr returns the argument stored under key, or def when absent.
func (d Declared) ArgOr(key, def string) string {
	if v, ok := d.Args[key]; ok {
		return v
	}
	return def
}

// Order parses the order argument. A missing argument means 0.
func (d Declared) Order() (int, error) {
	raw, ok := d.Args[OrderArg]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", OrderArg, raw, err)
	}
	return n, nil
}

func (d Declared) String() string {
	return fmt.Sprintf("%s at %s", d.Type, d.Location)
}

// Symbol is the program-level symbol annotations are declared on.
type Symbol interface {
	Annotations() []Declared
}

// List is a Symbol backed by a slice
type List []Declared

// Annotations implements Symbol
func (l List) Annotations() []Declared { return l }

// Marker is a constructed annotation.
type Marker[P, A any] interface {
	Order() int
	Editors() []editor.Editor[P, A]
}

// Factory constructs the marker for a declared annotation.
type Factory[P, A any] func(decl Declared) (Marker[P, A], error)

// Static is a Marker with fixed values
type Static[P, A any] struct {
	OrderValue int
	Produced   []editor.Editor[P, A]
}

// MarkerOf creates a Static marker
func MarkerOf[P, A any](order int, editors ...editor.Editor[P, A]) *Static[P, A] {
	return &Static[P, A]{OrderValue: order, Produced: editors}
}

func (s *Static[P, A]) Order() int                      { return s.OrderValue }
func (s *Static[P, A]) Editors() []editor.Editor[P, A] { return s.Produced }

// Failure records an annotation whose construction failed.
type Failure struct {
	Annotation Declared
	Err        error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Annotation, f.Err)
}

// Resolution is the result of resolving a symbol.
type Resolution[P, A any] struct {
	Editors  []editor.Editor[P, A]
	Failures []Failure
}
