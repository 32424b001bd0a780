package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/artifacts"
	"github.com/platinummonkey/weaver/pkg/config"
	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/editors"
	"github.com/platinummonkey/weaver/pkg/linter"
	"github.com/platinummonkey/weaver/pkg/observability"
	"github.com/platinummonkey/weaver/pkg/plugins"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

type sessionOptions struct {
	store   bool
	metrics bool
}

// session holds what every command shares: logging, the compile cache,
// plugins and artifact storage.
type session struct {
	cfg      *config.Config
	log      *logrus.Logger
	compiler *protohost.Compiler
	loader   *plugins.Loader
	store    artifacts.Manager

	promRegistry *prometheus.Registry
	metrics      *observability.Metrics
	otel         *observability.OTelProviders
	otelMetrics  *observability.OTelMetrics
}

func newSession(ctx context.Context, cfg *config.Config, logOut io.Writer, opts sessionOptions) (*session, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	log, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, logOut)
	if err != nil {
		return nil, err
	}

	rt := &session{cfg: cfg, log: log}
	if opts.metrics {
		rt.promRegistry = prometheus.NewRegistry()
		rt.metrics = observability.NewMetrics(rt.promRegistry)
	}

	rt.otel, err = observability.InitOTel(ctx, cfg.Observability.OTel(), log)
	if err != nil {
		return nil, err
	}
	if rt.otel != nil {
		rt.otelMetrics, err = observability.NewOTelMetrics(rt.otel.MeterProvider)
		if err != nil {
			rt.close(ctx)
			return nil, err
		}
	}

	rt.compiler = protohost.NewCompiler(cfg.Compiler, rt.metrics, log)
	if len(cfg.Build.PluginDirs) > 0 {
		rt.loader = plugins.NewLoader(cfg.Build.PluginDirs, log)
	}

	if opts.store {
		manager, err := artifacts.New(ctx, &cfg.Artifacts)
		if err != nil {
			rt.close(ctx)
			return nil, fmt.Errorf("failed to create artifact manager: %w", err)
		}
		rt.store = artifacts.Instrument(manager, rt.metrics, log)
	}
	return rt, nil
}

func (rt *session) close(ctx context.Context) error {
	var errs []error
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	errs = append(errs, observability.ShutdownOTel(ctx, rt.otel, rt.log))
	return errors.Join(errs...)
}

// registry builds a marker registry for one target: the built-in markers
// with the target's lint config, then every installable plugin.
func (rt *session) registry(ctx context.Context, dir string) (*protohost.Registry, error) {
	lintDir := rt.cfg.Build.LintConfigDir
	if lintDir == "" {
		lintDir = dir
	}
	lintCfg, err := linter.LoadConfigFromDir(lintDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load lint config: %w", err)
	}

	reg := protohost.NewRegistry()
	if err := editors.RegisterDefaults(reg, editors.Deps{LintConfig: lintCfg, Logger: rt.log}); err != nil {
		return nil, err
	}

	if rt.loader != nil {
		installed, err := rt.loader.InstallAll(ctx, reg)
		if err != nil {
			rt.log.WithError(err).Warn("some plugins were not installed")
		}
		rt.log.WithField("plugins", len(installed)).Debug("installed plugins")
	}
	return reg, nil
}

// targetResult is the outcome of building one directory
type targetResult struct {
	Dir         string
	Name        string
	Diagnostics []diag.Diagnostic
	Dropped     int
	Editors     []string
	OK          bool
	Artifact    *artifacts.StoreResult
}

// buildTarget compiles every .proto file under dir through the markers it
// declares and stores the result. A failed build is reported in the result;
// the error covers everything else.
func (rt *session) buildTarget(ctx context.Context, dir string) (*targetResult, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	log := rt.log.WithField("target", dir)

	program, err := protohost.LoadDir(dir, protohost.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", dir, err)
	}
	if program.Len() == 0 {
		return nil, fmt.Errorf("no proto files found in %s", dir)
	}

	reg, err := rt.registry(ctx, dir)
	if err != nil {
		return nil, err
	}

	builder := &protohost.Builder{
		Registry: reg,
		Compiler: rt.compiler,
		Logger:   rt.log,
		Metrics:  rt.metrics,
	}
	bag := diag.NewBag(rt.cfg.Build.MaxDiagnostics)
	started := time.Now()
	res := builder.Build(ctx, program, bag)

	result := &targetResult{
		Dir:         dir,
		Name:        filepath.Base(abs),
		Diagnostics: bag.Sorted(),
		Dropped:     bag.Dropped(),
		Editors:     res.Editors,
		OK:          res.OK && !bag.HasErrors(),
	}
	log.WithFields(logrus.Fields{
		"units":       program.Len(),
		"editors":     len(res.Editors),
		"diagnostics": bag.Len(),
		"ok":          result.OK,
	}).Debug("build finished")
	rt.otelMetrics.RecordBuild(ctx, result.Name, result.OK, time.Since(started), bag.Len())

	if !result.OK || rt.store == nil {
		return result, nil
	}

	req, err := artifacts.FromOutput(result.Name, res.Output, map[string]string{"source": abs})
	if err != nil {
		return result, err
	}
	stored, err := rt.store.Store(ctx, req)
	if err != nil {
		return result, err
	}
	result.Artifact = stored
	rt.otelMetrics.RecordArtifact(ctx, rt.store.Backend(), stored.Size)
	return result, nil
}

func printResult(w io.Writer, r *targetResult) {
	for _, d := range r.Diagnostics {
		fmt.Fprintln(w, d)
	}
	if r.Dropped > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown\n", r.Dropped)
	}

	status := "ok"
	if !r.OK {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s: %s (%d editors)\n", r.Dir, status, len(r.Editors))
	if r.Artifact != nil {
		fmt.Fprintf(w, "  stored %s (%s, %d bytes)\n", r.Artifact.Key, shortHash(r.Artifact.Hash), r.Artifact.Size)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// loadConfig reads the environment configuration and applies overrides.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// splitList splits a list flag on commas or the OS list separator
func splitList(value string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == filepath.ListSeparator
	}) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
