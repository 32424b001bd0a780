package protohost

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
)

// DirectivePrefix starts a marker directive inside a comment.
const DirectivePrefix = "@weave:"

// ErrMalformedDirective is returned for directives that cannot be parsed.
var ErrMalformedDirective = errors.New("malformed directive")

// ScanDirectives extracts all @weave directives from proto file content, in
// line order. Directives may appear in line comments or in block comments.
//
// Directives have the format: // @weave:<marker>[:<key>=<value>,...]
// Examples:
//
//	// @weave:weave.Banner:text=hello
//	// @weave:weave.FileOption:name=go_package,value="example.com/x;x",order=2
func ScanDirectives(path, content string) (annotation.List, error) {
	var out annotation.List

	lines := strings.Split(content, "\n")
	inBlockComment := false

	for lineNum, original := range lines {
		line := strings.TrimSpace(original)
		var text string

		switch {
		case inBlockComment:
			if end := strings.Index(line, "*/"); end >= 0 {
				inBlockComment = false
				line = line[:end]
			}
			text = strings.TrimSpace(strings.TrimPrefix(line, "*"))

		case strings.HasPrefix(line, "/*"):
			body := line[2:]
			if end := strings.Index(body, "*/"); end >= 0 {
				body = body[:end]
			} else {
				inBlockComment = true
			}
			text = strings.TrimSpace(body)

		case strings.HasPrefix(line, "//"):
			text = strings.TrimSpace(strings.TrimPrefix(line, "//"))

		default:
			// trailing comment after a declaration
			if i := strings.Index(line, "// "+DirectivePrefix); i >= 0 {
				text = strings.TrimSpace(line[i+2:])
			}
		}

		if !IsDirective(text) {
			continue
		}
		loc := diag.Location{
			File:   path,
			Line:   lineNum + 1,
			Column: strings.Index(original, DirectivePrefix) + 1,
		}
		decl, err := ParseDirective(text, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}

	return out, nil
}

// IsDirective checks if a comment text is a weave directive.
func IsDirective(text string) bool {
	return strings.HasPrefix(text, DirectivePrefix)
}

// ParseDirective parses comment text of the form
// @weave:<marker>[:<key>=<value>,...]. Values may be double-quoted to
// contain commas or leading spaces.
func ParseDirective(text string, loc diag.Location) (annotation.Declared, error) {
	if !IsDirective(text) {
		return annotation.Declared{}, fmt.Errorf("%s: %w: not a weave directive", loc, ErrMalformedDirective)
	}

	body := strings.TrimPrefix(text, DirectivePrefix)
	marker, rawArgs, _ := strings.Cut(body, ":")
	marker = strings.TrimSpace(marker)
	if marker == "" || strings.ContainsAny(marker, " \t=,") {
		return annotation.Declared{}, fmt.Errorf("%s: %w: invalid marker name %q", loc, ErrMalformedDirective, marker)
	}

	args, err := parseArgs(rawArgs)
	if err != nil {
		return annotation.Declared{}, fmt.Errorf("%s: %w: %v", loc, ErrMalformedDirective, err)
	}

	return annotation.Declared{
		Type:     marker,
		Args:     args,
		Raw:      text,
		Location: loc,
	}, nil
}

// parseArgs parses "k=v,k2=\"v, 2\"" into a map.
func parseArgs(s string) (map[string]string, error) {
	args := make(map[string]string)
	rest := strings.TrimSpace(s)

	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return nil, fmt.Errorf("argument %q has no value", rest)
		}
		key := strings.TrimSpace(rest[:eq])
		if key == "" || strings.ContainsAny(key, " ,\"") {
			return nil, fmt.Errorf("invalid argument name %q", key)
		}
		if _, dup := args[key]; dup {
			return nil, fmt.Errorf("duplicate argument %q", key)
		}
		rest = strings.TrimLeft(rest[eq+1:], " \t")

		var value string
		if strings.HasPrefix(rest, "\"") {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, fmt.Errorf("argument %q: unterminated quoted value", key)
			}
			value, _ = strconv.Unquote(quoted)
			rest = strings.TrimSpace(rest[len(quoted):])
			if rest != "" && !strings.HasPrefix(rest, ",") {
				return nil, fmt.Errorf("argument %q: unexpected text after quoted value", key)
			}
		} else {
			end := strings.IndexByte(rest, ',')
			if end < 0 {
				end = len(rest)
			}
			value = strings.TrimSpace(rest[:end])
			rest = rest[end:]
		}

		args[key] = value
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
	}

	return args, nil
}
