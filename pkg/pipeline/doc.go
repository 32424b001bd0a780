// Package pipeline implements the flattening pipeline editors register
// transformation steps into.
//
// # Overview
//
// A Pipeline is an ordered list of steps over one representation type. A step
// may itself be a Pipeline; such nested pipelines are expanded in place while
// iterating rather than when they are appended. This lets an editor reserve a
// slot early (Sub) and hand the handle to editors registered later, which
// then append into that slot without knowing the rest of the pipeline.
//
// Iteration reads list lengths as it advances, so a step appended during a
// traversal to any pipeline still being visited is reached in the same pass.
// Nothing is cached between runs.
//
// # Steps
//
// A step receives the current value and returns the next one plus a changed
// flag. Returning changed=false means "unchanged": the input flows on as-is
// and whatever value was returned is ignored.
//
//	p := pipeline.New[*Program]("program")
//	reg := p.Append(pipeline.Func("add-banner", func(ctx context.Context, in *Program) (*Program, bool, error) {
//		return in.WithUnit("banner.proto", text), true, nil
//	}))
//	defer reg.Remove()
//
//	out, changed, err := p.Run(ctx, program)
package pipeline
