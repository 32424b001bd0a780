package protohost

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/observability"
	"github.com/platinummonkey/weaver/pkg/processor"
)

// Builder runs one processor per program: it resolves the program's marker
// directives, edits, emits and disposes.
type Builder struct {
	Registry *Registry
	Compiler *Compiler
	Logger   *logrus.Logger
	Metrics  *observability.Metrics

	// Options are appended to the processor options the builder sets.
	Options []processor.Option
}

// Result is the outcome of a build
type Result struct {
	Program *Program
	Output  *Output
	OK      bool
	Editors []string
}

// Build processes program and reports everything to sink.
func (b *Builder) Build(ctx context.Context, program *Program, sink diag.Sink) Result {
	log := observability.OrDiscard(b.Logger)

	res := annotation.NewResolver[*Program, *descriptorpb.FileDescriptorSet](b.Registry, log).Resolve(program)
	opts := []processor.Option{
		processor.WithLogger(log),
		processor.WithMetrics(b.Metrics),
		processor.WithDescriptors(Descriptors()),
	}
	opts = append(opts, b.Options...)

	proc := processor.FromResolution[*Program, *descriptorpb.FileDescriptorSet, *Output](NewHost(b.Compiler, sink), sink, res, opts...)
	defer proc.Dispose()

	out, output, ok := proc.TryEdit(ctx, program)

	return Result{Program: out, Output: output, OK: ok, Editors: proc.EditorNames()}
}
