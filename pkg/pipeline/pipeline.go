package pipeline

import (
	"context"
	"fmt"
	"iter"
)

// Step transforms a value of type T.
type Step[T any] interface {
	Apply(ctx context.Context, in T) (out T, changed bool, err error)
}

// StepFunc adapts a function to Step
type StepFunc[T any] func(ctx context.Context, in T) (T, bool, error)

// Apply calls f
func (f StepFunc[T]) Apply(ctx context.Context, in T) (T, bool, error) {
	return f(ctx, in)
}

// namedStep decorates a step with a name used in error messages
type namedStep[T any] struct {
	name string
	fn   StepFunc[T]
}

func (s *namedStep[T]) Apply(ctx context.Context, in T) (T, bool, error) {
	out, changed, err := s.fn(ctx, in)
	if err != nil {
		return out, changed, fmt.Errorf("step %s: %w", s.name, err)
	}
	return out, changed, nil
}

func (s *namedStep[T]) Name() string { return s.name }

// Func creates a named step from a function.
func Func[T any](name string, fn StepFunc[T]) Step[T] {
	return &namedStep[T]{name: name, fn: fn}
}

// Registration is the handle returned by Append. Removing it revokes the
// step; removal is idempotent and safe while the pipeline is being iterated.
type Registration struct {
	removed bool
}

// Remove revokes the registration
func (r *Registration) Remove() {
	if r == nil {
		return
	}
	r.removed = true
}

// Removed reports whether Remove has been called
func (r *Registration) Removed() bool {
	return r != nil && r.removed
}

type entry[T any] struct {
	step Step[T]
	sub  *Pipeline[T]
	reg  *Registration
}

// Pipeline is an ordered, dynamically extensible list of steps.
type Pipeline[T any] struct {
	name    string
	entries []*entry[T]
}

// New creates an empty pipeline
func New[T any](name string) *Pipeline[T] {
	return &Pipeline[T]{name: name}
}

// Name returns the pipeline name
func (p *Pipeline[T]) Name() string {
	return p.name
}

// Append adds step at the end of the pipeline. A *Pipeline[T] step is
// expanded in place during iteration.
func (p *Pipeline[T]) Append(step Step[T]) *Registration {
	reg := &Registration{}
	if step == nil {
		reg.removed = true
		return reg
	}
	e := &entry[T]{step: step, reg: reg}
	if sub, ok := step.(*Pipeline[T]); ok {
		e.sub = sub
	}
	p.entries = append(p.entries, e)
	return reg
}

// Sub appends an empty nested pipeline and returns it.
func (p *Pipeline[T]) Sub(name string) *Pipeline[T] {
	sub := New[T](name)
	p.Append(sub)
	return sub
}

// Steps yields the live leaf steps in flatten order: entries in append order,
// nested pipelines expanded depth-first when reached. A nested pipeline that
// is already being expanded higher up is skipped.
func (p *Pipeline[T]) Steps() iter.Seq[Step[T]] {
	return func(yield func(Step[T]) bool) {
		type frame struct {
			p *Pipeline[T]
			i int
		}
		stack := []frame{{p: p}}
		for len(stack) > 0 {
			top := len(stack) - 1
			cur := stack[top].p
			if stack[top].i >= len(cur.entries) {
				stack = stack[:top]
				continue
			}
			e := cur.entries[stack[top].i]
			stack[top].i++

			if e.reg.removed {
				continue
			}
			if e.sub != nil {
				active := false
				for _, f := range stack {
					if f.p == e.sub {
						active = true
						break
					}
				}
				if !active {
					stack = append(stack, frame{p: e.sub})
				}
				continue
			}
			if !yield(e.step) {
				return
			}
		}
	}
}

// Len returns the number of live leaf steps currently reachable.
func (p *Pipeline[T]) Len() int {
	n := 0
	for range p.Steps() {
		n++
	}
	return n
}

// Run applies every leaf step in order, threading the value through. It
// reports whether any step changed the value. The context is checked before
// each step; a canceled context stops the run with ctx.Err().
func (p *Pipeline[T]) Run(ctx context.Context, in T) (T, bool, error) {
	cur := in
	changed := false
	for step := range p.Steps() {
		if err := ctx.Err(); err != nil {
			return cur, changed, err
		}
		out, ok, err := step.Apply(ctx, cur)
		if err != nil {
			return cur, changed, err
		}
		if ok {
			cur = out
			changed = true
		}
	}
	return cur, changed, nil
}

// Apply runs the pipeline as a single step. Pipelines nested through Append
// are flattened instead and never reach this method.
func (p *Pipeline[T]) Apply(ctx context.Context, in T) (T, bool, error) {
	return p.Run(ctx, in)
}
