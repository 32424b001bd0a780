// Package editor defines the unit of extension driven by the processor.
//
// An editor is created by a marker annotation, registered once through
// Initialize, notified around compilation and emission, and finally asked to
// revoke whatever it registered. P is the host's program representation and A
// the assembly-level symbol embedded in the emitted builder.
package editor

import (
	"context"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/store"
)

// Editor is the interface all editors must implement
type Editor[P, A any] interface {
	Name() string

	// Initialize is called exactly once. It may append steps to either
	// pipeline in env and returns child editors, which the processor splices
	// into its list directly after this editor.
	Initialize(ctx context.Context, env *Env[P, A]) ([]Editor[P, A], error)

	OnCompilationStart(ctx context.Context) error
	OnCompilationEnd(ctx context.Context) error
	OnEmissionStart(ctx context.Context) error
	OnEmissionEnd(ctx context.Context) error

	// UnregisterAll revokes every step registered during Initialize. It must
	// be idempotent and tolerate Initialize never having run.
	UnregisterAll()

	// Close releases editor resources on processor disposal.
	Close() error
}

// IsNil reports whether ed is nil, including a nil pointer (or other nil
// reference) stored in the interface.
func IsNil[P, A any](ed Editor[P, A]) bool {
	if ed == nil {
		return true
	}
	v := reflect.ValueOf(ed)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Env is what an editor sees of the processor while initializing.
type Env[P, A any] struct {
	// Input is the program the processor was initialized with.
	Input P

	Program  *pipeline.Pipeline[P]
	Assembly *pipeline.Pipeline[A]
	Store    *store.Store

	Reporter    diag.Reporter
	Descriptors *diag.Table
	Log         *logrus.Entry
}

// Base provides default hooks and tracked registrations for editors.
// Embed it and implement Initialize.
type Base[P, A any] struct {
	EditorName string

	registrations []*pipeline.Registration
}

// Name returns the editor name
func (b *Base[P, A]) Name() string { return b.EditorName }

func (b *Base[P, A]) OnCompilationStart(ctx context.Context) error { return nil }
func (b *Base[P, A]) OnCompilationEnd(ctx context.Context) error   { return nil }
func (b *Base[P, A]) OnEmissionStart(ctx context.Context) error    { return nil }
func (b *Base[P, A]) OnEmissionEnd(ctx context.Context) error      { return nil }
func (b *Base[P, A]) Close() error                                 { return nil }

// AddProgramStep appends step to the program pipeline and tracks the
// registration.
func (b *Base[P, A]) AddProgramStep(env *Env[P, A], step pipeline.Step[P]) *pipeline.Registration {
	return b.Track(env.Program.Append(step))
}

// AddAssemblyStep appends step to the assembly pipeline and tracks the
// registration.
func (b *Base[P, A]) AddAssemblyStep(env *Env[P, A], step pipeline.Step[A]) *pipeline.Registration {
	return b.Track(env.Assembly.Append(step))
}

// Track records a registration so UnregisterAll revokes it.
func (b *Base[P, A]) Track(reg *pipeline.Registration) *pipeline.Registration {
	if reg != nil {
		b.registrations = append(b.registrations, reg)
	}
	return reg
}

// UnregisterAll removes every tracked registration
func (b *Base[P, A]) UnregisterAll() {
	for _, reg := range b.registrations {
		reg.Remove()
	}
	b.registrations = nil
}

// Registrations returns the number of live tracked registrations
func (b *Base[P, A]) Registrations() int {
	n := 0
	for _, reg := range b.registrations {
		if !reg.Removed() {
			n++
		}
	}
	return n
}

// InitFunc is the body of an editor created with New.
type InitFunc[P, A any] func(ctx context.Context, self *Func[P, A], env *Env[P, A]) ([]Editor[P, A], error)

// Func is an editor whose Initialize is a function. Hooks default to no-ops
// and can be set individually.
type Func[P, A any] struct {
	Base[P, A]

	init InitFunc[P, A]

	CompilationStart func(ctx context.Context) error
	CompilationEnd   func(ctx context.Context) error
	EmissionStart    func(ctx context.Context) error
	EmissionEnd      func(ctx context.Context) error
	Teardown         func() error
}

// New creates a function-backed editor
func New[P, A any](name string, init InitFunc[P, A]) *Func[P, A] {
	return &Func[P, A]{Base: Base[P, A]{EditorName: name}, init: init}
}

func (f *Func[P, A]) Initialize(ctx context.Context, env *Env[P, A]) ([]Editor[P, A], error) {
	if f.init == nil {
		return nil, nil
	}
	return f.init(ctx, f, env)
}

func (f *Func[P, A]) OnCompilationStart(ctx context.Context) error {
	return call(ctx, f.CompilationStart)
}

func (f *Func[P, A]) OnCompilationEnd(ctx context.Context) error {
	return call(ctx, f.CompilationEnd)
}

func (f *Func[P, A]) OnEmissionStart(ctx context.Context) error {
	return call(ctx, f.EmissionStart)
}

func (f *Func[P, A]) OnEmissionEnd(ctx context.Context) error {
	return call(ctx, f.EmissionEnd)
}

func (f *Func[P, A]) Close() error {
	if f.Teardown == nil {
		return nil
	}
	return f.Teardown()
}

func call(ctx context.Context, hook func(context.Context) error) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}
