package processor

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/editor"
	"github.com/platinummonkey/weaver/pkg/store"
)

// TryEdit runs one edit cycle over program. It initializes the processor on
// first use and returns the edited program and emitted builder on success.
// On failure the input program and a zero builder are returned.
func (p *Processor[P, A, B]) TryEdit(ctx context.Context, program P) (P, B, bool) {
	var zero B

	switch p.state {
	case StateDisposed:
		p.log.WithError(ErrDisposed).Debug("edit skipped")
		return program, zero, false
	case StateUninitialized:
		p.log.WithError(ErrNotInitialized).Debug("edit skipped")
		return program, zero, false
	}

	if !p.TryInitialize(ctx, program) {
		return program, zero, false
	}

	runID := p.runID()
	log := p.log.WithField("run_id", runID)

	ctx, span := p.tracer.Start(ctx, "weaver.edit")
	span.SetAttributes(attribute.String("weaver.run_id", runID))
	defer span.End()

	p.state = StateEditing
	started := p.now()

	out, builder, err := p.edit(ctx, log, program)
	if err != nil {
		var pe *PhaseError
		phase := ""
		if errors.As(err, &pe) {
			phase = pe.Phase
		}
		p.reportProcessing(phase, err)
		p.state = StateEditingFailed
		p.metrics.RecordEditCycle(false)
		span.SetStatus(codes.Error, phase)
		log.WithField("phase", phase).WithError(err).Debug("edit cycle failed")
		return program, zero, false
	}

	p.state = StateDone
	p.metrics.RecordEditCycle(true)
	log.WithField("elapsed", p.now().Sub(started)).Debug("edit cycle done")
	return out, builder, true
}

func (p *Processor[P, A, B]) edit(ctx context.Context, log *logrus.Entry, program P) (P, B, error) {
	var (
		cur     = program
		builder B
		symbol  A
		changed bool
	)

	if recompute, ok := store.TryGet(p.store, RecomputeOptionsKey[P]()); ok && recompute != nil {
		err := p.phase(ctx, log, PhaseRecomputeOptions, func(ctx context.Context) error {
			next, _, err := recompute.Run(ctx, cur)
			if err == nil {
				cur = next
			}
			return err
		})
		if err != nil {
			return program, builder, err
		}
	}

	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{PhaseNotifyCompilationStart, p.notify(func(ctx context.Context, ed editor.Editor[P, A]) error { return ed.OnCompilationStart(ctx) })},
		{PhaseEditProgram, func(ctx context.Context) error {
			next, _, err := p.program.Run(ctx, cur)
			if err == nil {
				cur = next
			}
			return err
		}},
		{PhaseNotifyCompilationEnd, p.notify(func(ctx context.Context, ed editor.Editor[P, A]) error { return ed.OnCompilationEnd(ctx) })},
		{PhaseNotifyEmissionStart, p.notify(func(ctx context.Context, ed editor.Editor[P, A]) error { return ed.OnEmissionStart(ctx) })},
		{PhaseEmit, func(ctx context.Context) error {
			b, err := p.host.Emit(ctx, cur)
			if err == nil {
				builder = b
			}
			return err
		}},
		{PhaseExtractAssembly, func(ctx context.Context) error {
			sym, err := p.host.AssemblySymbol(builder)
			if err == nil {
				symbol = sym
			}
			return err
		}},
		{PhaseEditAssembly, func(ctx context.Context) error {
			next, ch, err := p.assembly.Run(ctx, symbol)
			if err == nil {
				symbol, changed = next, ch
			}
			return err
		}},
		{PhaseNotifyEmissionEnd, p.notify(func(ctx context.Context, ed editor.Editor[P, A]) error { return ed.OnEmissionEnd(ctx) })},
		{PhasePatchAssembly, func(ctx context.Context) error {
			if !changed {
				return nil
			}
			return p.host.SetAssemblySymbol(builder, symbol)
		}},
	}

	for _, step := range steps {
		if err := p.phase(ctx, log, step.name, step.fn); err != nil {
			var zero B
			return program, zero, err
		}
	}
	return cur, builder, nil
}

// phase runs fn as the named phase, recording its span and duration. The
// returned error is always a *PhaseError.
func (p *Processor[P, A, B]) phase(ctx context.Context, log *logrus.Entry, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "weaver."+name)
	defer span.End()

	started := p.now()
	err := ctx.Err()
	if err == nil {
		err = protect(func() error { return fn(ctx) })
	}
	p.metrics.ObservePhase(name, p.now().Sub(started), err)

	if err == nil {
		log.WithField("phase", name).Trace("phase done")
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var pe *PhaseError
	if errors.As(err, &pe) {
		pe.Phase = name
		return err
	}
	return &PhaseError{Phase: name, Err: err}
}

// notify calls hook on every editor in order and stops at the first failure.
func (p *Processor[P, A, B]) notify(hook func(context.Context, editor.Editor[P, A]) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, ed := range p.editors {
			if editor.IsNil(ed) {
				continue
			}
			if err := protect(func() error { return hook(ctx, ed) }); err != nil {
				return &PhaseError{Editor: nameOf(ed), Err: err}
			}
		}
		return nil
	}
}

func (p *Processor[P, A, B]) reportProcessing(phase string, err error) {
	desc := p.descriptors.MustLookup(diag.ProcessingErrorID)

	editorName := ""
	var pe *PhaseError
	if errors.As(err, &pe) {
		editorName = pe.Editor
		err = pe.Err
	}

	for _, leaf := range unroll(err) {
		var precise *diag.Error
		if errors.As(leaf, &precise) {
			p.report(precise.Diagnostic)
			continue
		}
		d := diag.New(desc, diag.Location{}, phase, describe(leaf)).WithProperty(diag.PropPhase, phase)
		if editorName != "" {
			d = d.WithProperty(diag.PropEditor, editorName)
		}
		p.report(d)
	}
}
