package processor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/editor"
	"github.com/platinummonkey/weaver/pkg/observability"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/store"
)

type settings struct {
	logger      *logrus.Logger
	metrics     *observability.Metrics
	tracer      trace.Tracer
	descriptors *diag.Table
	failures    []annotation.Failure
	runID       func() string
	now         func() time.Time
}

// Option configures a Processor
type Option func(*settings)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithMetrics records lifecycle metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// WithDescriptors sets the descriptor table. The default is diag.DefaultTable.
func WithDescriptors(t *diag.Table) Option {
	return func(s *settings) { s.descriptors = t }
}

// WithFailures defers annotation construction failures to TryInitialize.
func WithFailures(failures ...annotation.Failure) Option {
	return func(s *settings) { s.failures = append(s.failures, failures...) }
}

// WithRunID overrides the edit cycle id generator.
func WithRunID(fn func() string) Option {
	return func(s *settings) { s.runID = fn }
}

// Processor drives editors through initialization, editing and teardown for
// one build. It is not safe for concurrent use.
type Processor[P, A, B any] struct {
	host Host[P, A, B]
	sink diag.Sink

	editors  []editor.Editor[P, A]
	failures []annotation.Failure

	program  *pipeline.Pipeline[P]
	assembly *pipeline.Pipeline[A]
	store    *store.Store

	state       State
	initialized bool
	initOK      bool

	log         *logrus.Logger
	metrics     *observability.Metrics
	tracer      trace.Tracer
	descriptors *diag.Table
	runID       func() string
	now         func() time.Time
}

// New creates a processor over editors, which must already be in
// registration order.
func New[P, A, B any](host Host[P, A, B], sink diag.Sink, editors []editor.Editor[P, A], opts ...Option) *Processor[P, A, B] {
	s := settings{
		runID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(observability.TracerName)
	}
	if s.descriptors == nil {
		s.descriptors = diag.DefaultTable()
	}

	return &Processor[P, A, B]{
		host:        host,
		sink:        sink,
		editors:     slices.DeleteFunc(slices.Clone(editors), editor.IsNil[P, A]),
		failures:    s.failures,
		program:     pipeline.New[P]("program"),
		assembly:    pipeline.New[A]("assembly"),
		store:       store.New(),
		state:       StateUncreated,
		log:         observability.OrDiscard(s.logger),
		metrics:     s.metrics,
		tracer:      s.tracer,
		descriptors: s.descriptors,
		runID:       s.runID,
		now:         s.now,
	}
}

// FromResolution creates a processor over the editors of res and defers its
// construction failures.
func FromResolution[P, A, B any](host Host[P, A, B], sink diag.Sink, res annotation.Resolution[P, A], opts ...Option) *Processor[P, A, B] {
	opts = append(opts, WithFailures(res.Failures...))
	return New(host, sink, res.Editors, opts...)
}

// State returns the lifecycle state
func (p *Processor[P, A, B]) State() State { return p.state }

// Editors returns the current editor list, including spliced children.
func (p *Processor[P, A, B]) Editors() []editor.Editor[P, A] { return slices.Clone(p.editors) }

// EditorNames returns the name of every editor in the current list.
func (p *Processor[P, A, B]) EditorNames() []string {
	names := make([]string, len(p.editors))
	for i, ed := range p.editors {
		names[i] = nameOf(ed)
	}
	return names
}

// Store returns the shared store
func (p *Processor[P, A, B]) Store() *store.Store { return p.store }

// ProgramPipeline returns the pipeline applied to the program before emission.
func (p *Processor[P, A, B]) ProgramPipeline() *pipeline.Pipeline[P] { return p.program }

// AssemblyPipeline returns the pipeline applied to the emitted assembly symbol.
func (p *Processor[P, A, B]) AssemblyPipeline() *pipeline.Pipeline[A] { return p.assembly }

// TryInitialize registers every editor. It returns the outcome of the first
// call on every later call.
func (p *Processor[P, A, B]) TryInitialize(ctx context.Context, program P) bool {
	if p.state == StateDisposed {
		return false
	}
	if p.initialized {
		return p.initOK
	}
	p.initialized = true
	p.state = StateInitializing

	ctx, span := p.tracer.Start(ctx, "weaver.initialize")
	defer span.End()

	ok := p.initialize(ctx, program)
	if ok {
		p.initOK = true
		p.state = StateInitializationSucceeded
	} else {
		p.state = StateInitializationFailed
		span.SetStatus(codes.Error, "initialization failed")
	}
	span.SetAttributes(attribute.Int("weaver.editors", len(p.editors)))
	p.metrics.RecordInitialization(ok, len(p.editors))
	return ok
}

func (p *Processor[P, A, B]) initialize(ctx context.Context, program P) bool {
	if len(p.failures) > 0 {
		desc := p.descriptors.MustLookup(diag.ConstructionErrorID)
		for _, f := range p.failures {
			p.report(diag.New(desc, f.Annotation.Location, f.Annotation.Type, describe(f.Err)))
		}
		p.log.WithField("failures", len(p.failures)).Debug("annotation construction failed")
		return false
	}

	env := &editor.Env[P, A]{
		Input:       program,
		Program:     p.program,
		Assembly:    p.assembly,
		Store:       p.store,
		Reporter:    diag.ReporterFunc(p.report),
		Descriptors: p.descriptors,
	}

	// p.editors grows while we walk it.
	for i := 0; i < len(p.editors); i++ {
		ed := p.editors[i]
		if editor.IsNil(ed) {
			continue
		}
		name := nameOf(ed)
		log := p.log.WithField("editor", name)
		env.Log = log

		var children []editor.Editor[P, A]
		err := ctx.Err()
		if err == nil {
			err = protect(func() error {
				var initErr error
				children, initErr = ed.Initialize(ctx, env)
				return initErr
			})
		}
		if err != nil {
			p.reportRegistration(name, err)
			log.WithError(err).Debug("editor failed to register")
			return false
		}

		if diag.HasErrors(p.sink.Diagnostics()) {
			log.Debug("error diagnostics present after registration")
			return false
		}

		children = slices.DeleteFunc(children, editor.IsNil[P, A])
		if len(children) > 0 {
			p.editors = slices.Insert(p.editors, i+1, children...)
			log.WithField("children", len(children)).Debug("spliced child editors")
		}
	}
	return true
}

func (p *Processor[P, A, B]) reportRegistration(name string, err error) {
	var precise *diag.Error
	if errors.As(err, &precise) {
		p.report(precise.Diagnostic)
		return
	}
	desc := p.descriptors.MustLookup(diag.RegistrationErrorID)
	p.report(diag.New(desc, diag.Location{}, name, describe(err)).WithProperty(diag.PropEditor, name))
}

// TryUninitialize revokes every editor's registrations. Only valid after a
// successful initialization.
func (p *Processor[P, A, B]) TryUninitialize() bool {
	if !p.initOK || p.state == StateUninitialized || p.state == StateDisposed {
		return false
	}
	for _, ed := range p.editors {
		p.teardown(ed, "unregister", func() error {
			ed.UnregisterAll()
			return nil
		})
	}
	p.state = StateUninitialized
	return true
}

// Dispose unregisters and closes every editor, swallowing failures.
func (p *Processor[P, A, B]) Dispose() {
	if p.state == StateDisposed {
		return
	}
	for _, ed := range p.editors {
		if editor.IsNil(ed) {
			continue
		}
		p.teardown(ed, "unregister", func() error {
			ed.UnregisterAll()
			return nil
		})
		p.teardown(ed, "close", ed.Close)
	}
	p.state = StateDisposed
}

func (p *Processor[P, A, B]) teardown(ed editor.Editor[P, A], op string, fn func() error) {
	if editor.IsNil(ed) {
		return
	}
	if err := protect(fn); err != nil {
		p.log.WithFields(logrus.Fields{
			"editor": nameOf(ed),
			"op":     op,
		}).WithError(err).Debug("editor teardown failed")
	}
}

// nameOf returns ed.Name(), or the editor's type when Name panics.
func nameOf[P, A any](ed editor.Editor[P, A]) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", ed)
		}
	}()
	return ed.Name()
}

func (p *Processor[P, A, B]) report(d diag.Diagnostic) {
	p.metrics.RecordDiagnostic(d)
	p.sink.Report(d)
}
