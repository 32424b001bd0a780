package editors

import (
	"context"
	"fmt"
	"maps"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Bundle expands into the editors of several markers. The listed markers
// receive the bundle's remaining arguments.
type Bundle struct {
	protohost.Base

	Markers []string

	registry *protohost.Registry
	decl     annotation.Declared
}

// BundleFactory returns the weave.Bundle factory resolving markers in reg.
// Argument: markers, separated by ListSeparator.
func BundleFactory(reg *protohost.Registry) protohost.Factory {
	return func(decl annotation.Declared) (protohost.Marker, error) {
		markers := splitList(decl.Arg("markers"))
		if len(markers) == 0 {
			return nil, fmt.Errorf("%s requires a markers argument", decl.Type)
		}
		for _, m := range markers {
			if m == decl.Type || isBundle(reg, m) {
				return nil, fmt.Errorf("%s cannot contain bundle %s", decl.Type, m)
			}
			if !reg.IsMarker(m) {
				return nil, fmt.Errorf("%s: unknown marker %s", decl.Type, m)
			}
		}

		b := &Bundle{
			Base:     protohost.Base{EditorName: decl.Type},
			Markers:  markers,
			registry: reg,
			decl:     decl,
		}
		return marker(decl, b)
	}
}

func isBundle(reg *protohost.Registry, name string) bool {
	for cur := name; cur != "" && cur != annotation.RootType; {
		if cur == BundleMarker {
			return true
		}
		base, ok := reg.Base(cur)
		if !ok {
			return false
		}
		cur = base
	}
	return false
}

// Initialize constructs the listed markers and returns their editors as
// children.
func (b *Bundle) Initialize(ctx context.Context, env *protohost.Env) ([]protohost.Editor, error) {
	args := maps.Clone(b.decl.Args)
	delete(args, "markers")
	delete(args, annotation.OrderArg)

	var children []protohost.Editor
	for _, m := range b.Markers {
		factory, ok := b.registry.FactoryFor(m)
		if !ok {
			return nil, fmt.Errorf("marker %s has no factory", m)
		}
		child, err := factory(annotation.Declared{
			Type:     m,
			Args:     args,
			Raw:      b.decl.Raw,
			Location: b.decl.Location,
		})
		if err != nil {
			return nil, fmt.Errorf("bundled %s: %w", m, err)
		}
		if child == nil {
			return nil, fmt.Errorf("bundled %s: factory returned no marker", m)
		}
		children = append(children, child.Editors()...)
	}
	if env.Log != nil {
		env.Log.WithField("children", len(children)).Debug("bundle expanded")
	}
	return children, nil
}
