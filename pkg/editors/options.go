package editors

import (
	"context"
	"fmt"
	"strconv"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/pipeline"
	"github.com/platinummonkey/weaver/pkg/processor"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Options changes the compile options before every edit cycle. Unset
// arguments keep the program's value.
type Options struct {
	protohost.Base

	SourceInfo     *protohost.SourceInfoMode
	IncludeImports *bool
}

// NewOptions builds the weave.Options marker. Arguments: source_info
// (none, standard, extra) and include_imports (bool).
func NewOptions(decl annotation.Declared) (protohost.Marker, error) {
	o := &Options{Base: protohost.Base{EditorName: decl.Type}}

	if raw, ok := decl.Args["source_info"]; ok {
		mode := protohost.SourceInfoMode(raw)
		probe := protohost.DefaultOptions()
		probe.SourceInfo = mode
		if err := probe.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", decl.Type, err)
		}
		o.SourceInfo = &mode
	}
	if raw, ok := decl.Args["include_imports"]; ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid include_imports %q", decl.Type, raw)
		}
		o.IncludeImports = &v
	}
	if o.SourceInfo == nil && o.IncludeImports == nil {
		return nil, fmt.Errorf("%s: nothing to change", decl.Type)
	}
	return marker(decl, o)
}

func (o *Options) Initialize(ctx context.Context, env *protohost.Env) ([]protohost.Editor, error) {
	recompute := processor.PendingRecompute[*protohost.Program](env.Store)
	o.Track(recompute.Append(pipeline.Func("options", o.apply)))
	return nil, nil
}

func (o *Options) apply(ctx context.Context, p *protohost.Program) (*protohost.Program, bool, error) {
	opts := p.Options()
	next := opts
	if o.SourceInfo != nil {
		next.SourceInfo = *o.SourceInfo
	}
	if o.IncludeImports != nil {
		next.IncludeImports = *o.IncludeImports
	}
	if next == opts {
		return p, false, nil
	}

	out, err := p.WithOptions(next)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
