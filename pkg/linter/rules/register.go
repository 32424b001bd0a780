package rules

import "github.com/platinummonkey/weaver/pkg/linter"

// Registry interface for registering rules
type Registry interface {
	Register(rule linter.Rule)
}

// RegisterDefaultRules registers all built-in lint rules
func RegisterDefaultRules(registry Registry) {
	// Naming rules
	registry.Register(NewMessageNamingRule())
	registry.Register(NewFieldNamingRule())
	registry.Register(NewServiceNamingRule())
	registry.Register(NewEnumNamingRule())
	registry.Register(NewEnumValueNamingRule())

	// Documentation
	registry.Register(NewMessageCommentRule())
}
