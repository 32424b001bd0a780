package editors

import (
	"context"
	"fmt"
	"strings"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// GeneratedHeader opens every unit added by weave.Banner.
const GeneratedHeader = "// Code generated by weaver. DO NOT EDIT."

// Banner adds a generated unit to the program.
type Banner struct {
	protohost.Base

	Path    string
	Text    string
	Package string
}

// NewBanner builds the weave.Banner marker. Arguments: name (unit path,
// required), text and package.
func NewBanner(decl annotation.Declared) (protohost.Marker, error) {
	path := decl.Arg("name")
	if path == "" {
		return nil, fmt.Errorf("%s requires a name argument", decl.Type)
	}
	if !strings.HasSuffix(path, ".proto") {
		return nil, fmt.Errorf("%s: name %q must end in .proto", decl.Type, path)
	}

	b := &Banner{
		Base:    protohost.Base{EditorName: editorName(decl, "name")},
		Path:    path,
		Text:    decl.Arg("text"),
		Package: decl.Arg("package"),
	}
	return marker(decl, b)
}

func (b *Banner) Initialize(ctx context.Context, env *protohost.Env) ([]protohost.Editor, error) {
	b.AddProgramStep(env, pipeline.Func("banner:"+b.Path, b.apply))
	return nil, nil
}

func (b *Banner) apply(ctx context.Context, p *protohost.Program) (*protohost.Program, bool, error) {
	content := b.Content()
	if existing, ok := p.Unit(b.Path); ok {
		if existing.Content == content {
			return p, false, nil
		}
		return nil, false, fmt.Errorf("unit %s already exists", b.Path)
	}

	next, err := p.WithUnit(protohost.Unit{Path: b.Path, Content: content})
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

// Content renders the generated unit
func (b *Banner) Content() string {
	var sb strings.Builder
	sb.WriteString(GeneratedHeader)
	sb.WriteByte('\n')
	for _, line := range strings.Split(b.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sb.WriteString("// " + line + "\n")
		}
	}
	sb.WriteString("\nsyntax = \"proto3\";\n")
	if b.Package != "" {
		sb.WriteString("\npackage " + b.Package + ";\n")
	}
	return sb.String()
}
