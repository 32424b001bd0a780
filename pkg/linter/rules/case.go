package rules

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pascalCase     = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	snakeCase      = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	upperSnakeCase = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// isPascalCase checks if a string is in PascalCase
func isPascalCase(s string) bool {
	return pascalCase.MatchString(s)
}

// isSnakeCase checks if a string is in snake_case
func isSnakeCase(s string) bool {
	return snakeCase.MatchString(s) && !strings.Contains(s, "__") && !strings.HasSuffix(s, "_")
}

// isUpperSnakeCase checks if a string is in UPPER_SNAKE_CASE
func isUpperSnakeCase(s string) bool {
	return upperSnakeCase.MatchString(s) && !strings.Contains(s, "__") && !strings.HasSuffix(s, "_")
}

// toPascalCase converts a string to PascalCase
func toPascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toSnakeCase converts a string to snake_case
func toSnakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			if prevLower {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return strings.Trim(strings.ReplaceAll(b.String(), "__", "_"), "_")
}

// toUpperSnakeCase converts a string to UPPER_SNAKE_CASE
func toUpperSnakeCase(s string) string {
	return strings.ToUpper(toSnakeCase(s))
}
