package linter

import (
	"sort"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Rule interface that all lint rules must implement
type Rule interface {
	Name() string
	Category() Category
	Severity() Severity
	Description() string
	Check(file *descriptorpb.FileDescriptorProto, ctx *LintContext) []Violation
}

// RuleRegistry manages available lint rules
type RuleRegistry struct {
	rules map[string]Rule
}

// NewRuleRegistry creates an empty rule registry
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{
		rules: make(map[string]Rule),
	}
}

// Register adds a rule to the registry
func (r *RuleRegistry) Register(rule Rule) {
	r.rules[rule.Name()] = rule
}

// GetRule retrieves a rule by name
func (r *RuleRegistry) GetRule(name string) (Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// GetAllRules returns all registered rules sorted by name
func (r *RuleRegistry) GetAllRules() []Rule {
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name() < rules[j].Name() })
	return rules
}

// GetEnabledRules returns rules enabled by config. A rule is disabled when
// config.Lint.Rules maps its name to false or its category to "off".
func (r *RuleRegistry) GetEnabledRules(config *Config) []Rule {
	all := r.GetAllRules()
	if config == nil {
		return all
	}

	enabled := make([]Rule, 0, len(all))
	for _, rule := range all {
		if on, ok := config.Lint.Rules[rule.Name()]; ok && !on {
			continue
		}
		if config.Lint.Categories[string(rule.Category())] == "off" {
			continue
		}
		enabled = append(enabled, rule)
	}
	return enabled
}

// GetRulesByCategory returns rules in a specific category
func (r *RuleRegistry) GetRulesByCategory(category Category) []Rule {
	rules := make([]Rule, 0)
	for _, rule := range r.GetAllRules() {
		if rule.Category() == category {
			rules = append(rules, rule)
		}
	}
	return rules
}
