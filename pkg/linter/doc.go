// Package linter applies style rules to compiled protobuf descriptors.
//
// # Overview
//
// Rules inspect a FileDescriptorProto and return violations positioned using
// the file's SourceCodeInfo. A file compiled without source info still lints,
// but violations carry only the file name.
//
// # Rule Categories
//
// Naming: Message, field, enum, service naming conventions
// Documentation: Comment coverage
//
// # Usage Example
//
//	registry := linter.NewRuleRegistry()
//	rules.RegisterDefaultRules(registry)
//
//	engine := linter.NewLintEngine(config, registry)
//	for _, result := range engine.LintSet(set) {
//		for _, v := range result.Violations {
//			fmt.Println(v.Location, v.Message)
//		}
//	}
//
// Configuration is read from weaver-lint.yaml:
//
//	version: v1
//	lint:
//	  rules:
//	    field-naming: false
//	  categories:
//	    naming: warning
//	  ignore:
//	    - third_party/**
//
// # Related Packages
//
//   - pkg/linter/rules: Individual lint rules
//   - pkg/editors: the weave.Lint marker that runs the engine during a build
package linter
