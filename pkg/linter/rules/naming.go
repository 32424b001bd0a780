package rules

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/linter"
)

// MessageNamingRule checks that message names follow PascalCase
type MessageNamingRule struct {
	BaseRule
}

// NewMessageNamingRule creates a new message naming rule
func NewMessageNamingRule() *MessageNamingRule {
	return &MessageNamingRule{
		BaseRule: BaseRule{
			RuleName:        "message-naming",
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Message names must use PascalCase",
		},
	}
}

// Check validates message names
func (r *MessageNamingRule) Check(file *descriptorpb.FileDescriptorProto, ctx *linter.LintContext) []linter.Violation {
	violations := make([]linter.Violation, 0)
	walkMessages(file, func(msg *descriptorpb.DescriptorProto, path []int32) {
		if msg.GetOptions().GetMapEntry() || isPascalCase(msg.GetName()) {
			return
		}
		violations = append(violations, r.violation(
			fmt.Sprintf("Message name '%s' should be PascalCase", msg.GetName()),
			ctx.Locator.Locate(path...),
			toPascalCase(msg.GetName()),
		))
	})
	return violations
}

// FieldNamingRule checks that field names follow snake_case
type FieldNamingRule struct {
	BaseRule
}

// NewFieldNamingRule creates a new field naming rule
func NewFieldNamingRule() *FieldNamingRule {
	return &FieldNamingRule{
		BaseRule: BaseRule{
			RuleName:        "field-naming",
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Field names must use snake_case",
		},
	}
}

// Check validates field names
func (r *FieldNamingRule) Check(file *descriptorpb.FileDescriptorProto, ctx *linter.LintContext) []linter.Violation {
	violations := make([]linter.Violation, 0)
	walkMessages(file, func(msg *descriptorpb.DescriptorProto, path []int32) {
		for i, field := range msg.GetField() {
			if isSnakeCase(field.GetName()) {
				continue
			}
			violations = append(violations, r.violation(
				fmt.Sprintf("Field name '%s' should be snake_case", field.GetName()),
				ctx.Locator.Locate(linter.Path(path, linter.MessageField, int32(i))...),
				toSnakeCase(field.GetName()),
			))
		}
	})
	return violations
}

// ServiceNamingRule checks service and method names follow PascalCase
type ServiceNamingRule struct {
	BaseRule
}

// NewServiceNamingRule creates a new service naming rule
func NewServiceNamingRule() *ServiceNamingRule {
	return &ServiceNamingRule{
		BaseRule: BaseRule{
			RuleName:        "service-naming",
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Service and RPC names must use PascalCase",
		},
	}
}

// Check validates service names
func (r *ServiceNamingRule) Check(file *descriptorpb.FileDescriptorProto, ctx *linter.LintContext) []linter.Violation {
	violations := make([]linter.Violation, 0)
	for i, svc := range file.GetService() {
		path := []int32{linter.FileService, int32(i)}
		if !isPascalCase(svc.GetName()) {
			violations = append(violations, r.violation(
				fmt.Sprintf("Service name '%s' should be PascalCase", svc.GetName()),
				ctx.Locator.Locate(path...),
				toPascalCase(svc.GetName()),
			))
		}
		for j, method := range svc.GetMethod() {
			if isPascalCase(method.GetName()) {
				continue
			}
			violations = append(violations, r.violation(
				fmt.Sprintf("RPC name '%s' should be PascalCase", method.GetName()),
				ctx.Locator.Locate(linter.Path(path, linter.ServiceMethod, int32(j))...),
				toPascalCase(method.GetName()),
			))
		}
	}
	return violations
}

// EnumNamingRule checks that enum names follow PascalCase
type EnumNamingRule struct {
	BaseRule
}

// NewEnumNamingRule creates a new enum naming rule
func NewEnumNamingRule() *EnumNamingRule {
	return &EnumNamingRule{
		BaseRule: BaseRule{
			RuleName:        "enum-naming",
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Enum names must use PascalCase",
		},
	}
}

// Check validates enum names
func (r *EnumNamingRule) Check(file *descriptorpb.FileDescriptorProto, ctx *linter.LintContext) []linter.Violation {
	violations := make([]linter.Violation, 0)
	walkEnums(file, func(enum *descriptorpb.EnumDescriptorProto, path []int32) {
		if isPascalCase(enum.GetName()) {
			return
		}
		violations = append(violations, r.violation(
			fmt.Sprintf("Enum name '%s' should be PascalCase", enum.GetName()),
			ctx.Locator.Locate(path...),
			toPascalCase(enum.GetName()),
		))
	})
	return violations
}

// EnumValueNamingRule checks that enum values follow UPPER_SNAKE_CASE
type EnumValueNamingRule struct {
	BaseRule
}

// NewEnumValueNamingRule creates a new enum value naming rule
func NewEnumValueNamingRule() *EnumValueNamingRule {
	return &EnumValueNamingRule{
		BaseRule: BaseRule{
			RuleName:        "enum-value-naming",
			RuleCategory:    linter.CategoryNaming,
			RuleSeverity:    linter.SeverityError,
			RuleDescription: "Enum values must use UPPER_SNAKE_CASE",
		},
	}
}

// Check validates enum value names
func (r *EnumValueNamingRule) Check(file *descriptorpb.FileDescriptorProto, ctx *linter.LintContext) []linter.Violation {
	violations := make([]linter.Violation, 0)
	walkEnums(file, func(enum *descriptorpb.EnumDescriptorProto, path []int32) {
		for i, value := range enum.GetValue() {
			if isUpperSnakeCase(value.GetName()) {
				continue
			}
			violations = append(violations, r.violation(
				fmt.Sprintf("Enum value '%s' should be UPPER_SNAKE_CASE", value.GetName()),
				ctx.Locator.Locate(linter.Path(path, linter.EnumValue, int32(i))...),
				toUpperSnakeCase(value.GetName()),
			))
		}
	})
	return violations
}

// MessageCommentRule requires a leading comment on top-level messages
type MessageCommentRule struct {
	BaseRule
}

// NewMessageCommentRule creates a new message comment rule
func NewMessageCommentRule() *MessageCommentRule {
	return &MessageCommentRule{
		BaseRule: BaseRule{
			RuleName:        "message-comment",
			RuleCategory:    linter.CategoryDocumentation,
			RuleSeverity:    linter.SeverityInfo,
			RuleDescription: "Top-level messages should have a leading comment",
		},
	}
}

// Check reports undocumented top-level messages. Files compiled without
// source info are skipped since comments are not available.
func (r *MessageCommentRule) Check(file *descriptorpb.FileDescriptorProto, ctx *linter.LintContext) []linter.Violation {
	violations := make([]linter.Violation, 0)
	if file.GetSourceCodeInfo() == nil {
		return violations
	}
	for i, msg := range file.GetMessageType() {
		path := []int32{linter.FileMessageType, int32(i)}
		if ctx.Locator.Comment(path...) != "" {
			continue
		}
		violations = append(violations, r.violation(
			fmt.Sprintf("Message '%s' has no leading comment", msg.GetName()),
			ctx.Locator.Locate(path...),
			"",
		))
	}
	return violations
}
