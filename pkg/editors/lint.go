package editors

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/linter"
	"github.com/platinummonkey/weaver/pkg/linter/rules"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Diagnostic properties set on lint findings
const (
	PropRule       = "rule"
	PropSuggestion = "suggestion"
)

// wellKnownImports are never linted.
const wellKnownImports = "google/protobuf/**"

// Lint runs the descriptor linter over the emitted set and reports every
// violation as a diagnostic. It never changes the set.
type Lint struct {
	protohost.Base

	engine *linter.LintEngine
	log    *logrus.Logger
}

// LintFactory returns the weave.Lint factory. Arguments refine base:
// disable (rule names), off (categories) and min_coverage.
func LintFactory(base *linter.Config, log *logrus.Logger) protohost.Factory {
	return func(decl annotation.Declared) (protohost.Marker, error) {
		config := base.Clone()
		config.Lint.Ignore = append(config.Lint.Ignore, wellKnownImports)

		for _, name := range splitList(decl.Arg("disable")) {
			config.Lint.Rules[name] = false
		}
		for _, category := range splitList(decl.Arg("off")) {
			config.Lint.Categories[category] = "off"
		}
		if raw, ok := decl.Args["min_coverage"]; ok {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid min_coverage %q", decl.Type, raw)
			}
			config.Quality.Enabled = true
			config.Quality.DocumentationCoverage.MinCoverage = v
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", decl.Type, err)
		}

		registry := linter.NewRuleRegistry()
		rules.RegisterDefaultRules(registry)

		l := &Lint{
			Base:   protohost.Base{EditorName: decl.Type},
			engine: linter.NewLintEngine(config, registry),
			log:    log,
		}
		return marker(decl, l)
	}
}

func (l *Lint) Initialize(ctx context.Context, env *protohost.Env) ([]protohost.Editor, error) {
	desc, ok := env.Descriptors.Lookup(protohost.LintFindingID)
	if !ok {
		desc = protohost.Descriptors().MustLookup(protohost.LintFindingID)
	}
	rep := env.Reporter

	l.AddAssemblyStep(env, pipeline.Func("lint", func(ctx context.Context, set *descriptorpb.FileDescriptorSet) (*descriptorpb.FileDescriptorSet, bool, error) {
		results := l.engine.LintSet(set)
		for _, result := range results {
			for _, v := range result.Violations {
				d := diag.New(desc, v.Location, v.Rule, v.Message).
					WithSeverity(v.Severity.Diag()).
					WithProperty(PropRule, v.Rule)
				if v.Suggestion != "" {
					d = d.WithProperty(PropSuggestion, v.Suggestion)
				}
				rep.Report(d)
			}
		}

		summary := l.engine.GenerateSummary(results)
		l.log.WithFields(logrus.Fields{
			"files":    summary.TotalFiles,
			"errors":   summary.Errors,
			"warnings": summary.Warnings,
		}).Debug("lint complete")
		return set, false, nil
	}))
	return nil, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
