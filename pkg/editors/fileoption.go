package editors

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

var (
	optionName    = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	anchorPackage = regexp.MustCompile(`(?m)^\s*package\s+[\w.]+\s*;[^\n]*\n?`)
	anchorSyntax  = regexp.MustCompile(`(?m)^\s*(syntax|edition)\s*=\s*"[^"]*"\s*;[^\n]*\n?`)
)

// FileOption sets a string file option on every unit that does not set it.
type FileOption struct {
	protohost.Base

	Option string
	Value  string
	// Match restricts the edit to unit paths matching this glob.
	Match string

	declared *regexp.Regexp
}

// NewFileOption builds the weave.FileOption marker. Arguments: name
// (option name, required), value and match.
func NewFileOption(decl annotation.Declared) (protohost.Marker, error) {
	name := decl.Arg("name")
	if !optionName.MatchString(name) {
		return nil, fmt.Errorf("%s: invalid option name %q", decl.Type, name)
	}
	match := decl.Arg("match")
	if match != "" {
		if _, err := path.Match(match, ""); err != nil {
			return nil, fmt.Errorf("%s: invalid match pattern %q: %w", decl.Type, match, err)
		}
	}

	f := &FileOption{
		Base:     protohost.Base{EditorName: editorName(decl, "name")},
		Option:   name,
		Value:    decl.Arg("value"),
		Match:    match,
		declared: regexp.MustCompile(`(?m)^\s*option\s+` + name + `\s*=`),
	}
	return marker(decl, f)
}

func (f *FileOption) Initialize(ctx context.Context, env *protohost.Env) ([]protohost.Editor, error) {
	f.AddProgramStep(env, pipeline.Func("file-option:"+f.Option, f.apply))
	return nil, nil
}

func (f *FileOption) apply(ctx context.Context, p *protohost.Program) (*protohost.Program, bool, error) {
	cur, changed := p, false
	for _, u := range p.Units() {
		if f.Match != "" {
			if ok, _ := path.Match(f.Match, u.Path); !ok {
				continue
			}
		}
		if f.declared.MatchString(u.Content) {
			continue
		}

		next, err := cur.WithUnit(protohost.Unit{Path: u.Path, Content: f.insert(u.Content)})
		if err != nil {
			return nil, false, err
		}
		cur, changed = next, true
	}
	return cur, changed, nil
}

// insert places the option after the package statement, or after the
// syntax statement when there is none.
func (f *FileOption) insert(content string) string {
	line := fmt.Sprintf("option %s = %s;\n", f.Option, strconv.Quote(f.Value))
	for _, anchor := range []*regexp.Regexp{anchorPackage, anchorSyntax} {
		if loc := anchor.FindStringIndex(content); loc != nil {
			head := content[:loc[1]]
			if !strings.HasSuffix(head, "\n") {
				head += "\n"
			}
			return head + "\n" + line + content[loc[1]:]
		}
	}
	return line + content
}
