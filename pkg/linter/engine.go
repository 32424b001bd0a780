package linter

import (
	"path"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/diag"
)

// LintEngine orchestrates the linting process
type LintEngine struct {
	config   *Config
	registry *RuleRegistry
}

// NewLintEngine creates a new lint engine
func NewLintEngine(config *Config, registry *RuleRegistry) *LintEngine {
	if config == nil {
		config = DefaultConfig()
	}
	if registry == nil {
		registry = NewRuleRegistry()
	}

	return &LintEngine{
		config:   config,
		registry: registry,
	}
}

// Lint runs all enabled rules against a file descriptor
func (e *LintEngine) Lint(file *descriptorpb.FileDescriptorProto) LintResult {
	result := LintResult{
		FilePath:   file.GetName(),
		Violations: make([]Violation, 0),
	}

	ctx := &LintContext{
		FilePath: file.GetName(),
		Locator:  NewLocator(file),
		Config:   e.config,
	}

	for _, rule := range e.registry.GetEnabledRules(e.config) {
		for _, v := range rule.Check(file, ctx) {
			if sev, ok := e.config.Lint.Categories[string(v.Category)]; ok {
				v.Severity = Severity(sev)
			}
			result.Violations = append(result.Violations, v)
		}
	}

	if e.config.Quality.Enabled {
		result.Metrics = calculateMetrics(file)
		required := e.config.Quality.DocumentationCoverage.MinCoverage
		if required > 0 && result.Metrics.DocumentationCoverage < required {
			result.Violations = append(result.Violations, Violation{
				Rule:     "documentation-coverage",
				Severity: SeverityWarning,
				Category: CategoryDocumentation,
				Message:  formatCoverage(result.Metrics.DocumentationCoverage, required),
				Location: diag.Location{File: file.GetName()},
			})
		}
	}

	return result
}

// LintSet lints every file of set that is not ignored by the config.
func (e *LintEngine) LintSet(set *descriptorpb.FileDescriptorSet) []LintResult {
	results := make([]LintResult, 0, len(set.GetFile()))
	for _, file := range set.GetFile() {
		if e.Ignored(file.GetName()) {
			continue
		}
		results = append(results, e.Lint(file))
	}
	return results
}

// Ignored reports whether name matches an ignore pattern. A pattern ending
// in "/**" matches everything below that directory.
func (e *LintEngine) Ignored(name string) bool {
	for _, pattern := range e.config.Lint.Ignore {
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if strings.HasPrefix(name, prefix+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// GenerateSummary creates a summary of lint results
func (e *LintEngine) GenerateSummary(results []LintResult) Summary {
	summary := Summary{
		TotalFiles: len(results),
	}

	for _, result := range results {
		summary.TotalViolations += len(result.Violations)
		for _, v := range result.Violations {
			switch v.Severity {
			case SeverityError:
				summary.Errors++
			case SeverityWarning:
				summary.Warnings++
			case SeverityInfo:
				summary.Infos++
			}
		}
	}

	return summary
}

// LintResult contains the result of linting a single file
type LintResult struct {
	FilePath   string
	Violations []Violation
	Metrics    FileMetrics
}

// Violation represents a linting violation
type Violation struct {
	Rule       string
	Severity   Severity
	Category   Category
	Message    string
	Location   diag.Location
	Suggestion string
}

// Severity indicates how serious a violation is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diag maps the severity onto a diagnostic severity
func (s Severity) Diag() diag.Severity {
	switch s {
	case SeverityError:
		return diag.SevError
	case SeverityInfo:
		return diag.SevInfo
	default:
		return diag.SevWarning
	}
}

// Category groups related rules
type Category string

const (
	CategoryNaming        Category = "naming"
	CategoryDocumentation Category = "documentation"
)

// FileMetrics contains quality metrics for a file
type FileMetrics struct {
	MessageCount          int
	FieldCount            int
	CommentedMessages     int
	DocumentationCoverage float64
}

// Summary provides an overview of all lint results
type Summary struct {
	TotalFiles      int
	TotalViolations int
	Errors          int
	Warnings        int
	Infos           int
}

// LintContext provides context during rule checking
type LintContext struct {
	FilePath string
	Locator  *Locator
	Config   *Config
}
