package protohost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/reporter"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/observability"
)

// CompilerConfig configures a Compiler.
type CompilerConfig struct {
	// CacheSize is the number of compiled programs kept; 0 disables caching.
	CacheSize int
	// CacheTTL bounds the age of cached entries; 0 means no expiry.
	CacheTTL time.Duration
}

// DefaultCompilerConfig returns the default configuration
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		CacheSize: 64,
		CacheTTL:  30 * time.Minute,
	}
}

// Compiler compiles programs into descriptor sets. Results are cached by
// program hash, so recompiling identical sources is free. It is safe for
// concurrent use.
type Compiler struct {
	cache   *lru.LRU[string, compiled]
	metrics *observability.Metrics
	log     *logrus.Logger
}

// compiled is a cached compile result. Warnings are replayed on every hit so
// the diagnostics of a build do not depend on cache state.
type compiled struct {
	set      *descriptorpb.FileDescriptorSet
	warnings []diag.Diagnostic
}

// NewCompiler creates a compiler. metrics and log may be nil.
func NewCompiler(cfg CompilerConfig, metrics *observability.Metrics, log *logrus.Logger) *Compiler {
	c := &Compiler{
		metrics: metrics,
		log:     observability.OrDiscard(log),
	}
	if cfg.CacheSize > 0 {
		c.cache = lru.NewLRU[string, compiled](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c
}

// Compile compiles every unit of p. Syntax and link errors are returned
// joined, each as a *diag.Error carrying the exact source position.
// Warnings go to rep when it is non-nil.
func (c *Compiler) Compile(ctx context.Context, p *Program, rep diag.Reporter) (*descriptorpb.FileDescriptorSet, error) {
	if p == nil {
		return nil, errors.New("nil program")
	}

	key := p.Hash()
	if c.cache != nil {
		if hit, ok := c.cache.Get(key); ok {
			c.metrics.RecordCache(true)
			c.log.WithField("hash", key[:12]).Debug("compile cache hit")
			if rep != nil {
				for _, w := range hit.warnings {
					rep.Report(w)
				}
			}
			return proto.Clone(hit.set).(*descriptorpb.FileDescriptorSet), nil
		}
		c.metrics.RecordCache(false)
	}

	table := Descriptors()
	var (
		errs     []error
		warnings []diag.Diagnostic
	)
	handler := reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			errs = append(errs, diag.Raise(positioned(table.MustLookup(CompileErrorID), err)))
			return nil
		},
		func(err reporter.ErrorWithPos) {
			w := positioned(table.MustLookup(CompileWarningID), err)
			warnings = append(warnings, w)
			if rep != nil {
				rep.Report(w)
			}
		},
	)

	sources := make(map[string]string, p.Len())
	for _, u := range p.Units() {
		sources[u.Path] = u.Content
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		}),
		SourceInfoMode: sourceInfoMode(p.Options().SourceInfo),
		Reporter:       handler,
	}

	started := time.Now()
	files, err := compiler.Compile(ctx, p.Paths()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	var visit func(fd protoreflect.FileDescriptor)
	visit = func(fd protoreflect.FileDescriptor) {
		path := fd.Path()
		if seen[path] {
			return
		}
		seen[path] = true

		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			visit(imports.Get(i).FileDescriptor)
		}
		if _, isUnit := p.Unit(path); isUnit || p.Options().IncludeImports {
			set.File = append(set.File, protodesc.ToFileDescriptorProto(fd))
		}
	}
	for _, f := range files {
		visit(f)
	}

	c.log.WithFields(logrus.Fields{
		"units":   p.Len(),
		"files":   len(set.File),
		"elapsed": time.Since(started),
	}).Debug("compiled program")

	if c.cache != nil {
		c.cache.Add(key, compiled{
			set:      proto.Clone(set).(*descriptorpb.FileDescriptorSet),
			warnings: warnings,
		})
	}
	return set, nil
}

// Purge drops every cached result
func (c *Compiler) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

func positioned(d diag.Descriptor, err reporter.ErrorWithPos) diag.Diagnostic {
	pos := err.GetPosition()
	msg := err.Error()
	if inner := err.Unwrap(); inner != nil {
		msg = inner.Error()
	}
	return diag.New(d, diag.Location{File: pos.Filename, Line: pos.Line, Column: pos.Col}, msg)
}

func sourceInfoMode(mode SourceInfoMode) protocompile.SourceInfoMode {
	switch mode {
	case SourceInfoNone:
		return protocompile.SourceInfoNone
	case SourceInfoExtra:
		return protocompile.SourceInfoExtraComments
	default:
		return protocompile.SourceInfoStandard
	}
}
