package plugins

import (
	"fmt"
	"maps"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// MarkerPlugin defines the marker types listed in its manifest.
type MarkerPlugin struct {
	manifest *Manifest
	dir      string
}

// NewMarkerPlugin creates a plugin for manifest read from dir
func NewMarkerPlugin(manifest *Manifest, dir string) *MarkerPlugin {
	return &MarkerPlugin{manifest: manifest, dir: dir}
}

// Manifest returns the plugin manifest
func (p *MarkerPlugin) Manifest() *Manifest { return p.manifest }

// Dir returns the directory the manifest was read from
func (p *MarkerPlugin) Dir() string { return p.dir }

// Install defines every marker of the manifest in reg, in manifest order, so
// a marker may derive from one defined above it. The base must already be a
// marker.
func (p *MarkerPlugin) Install(reg *protohost.Registry) error {
	for _, spec := range p.manifest.Markers {
		if !reg.IsMarker(spec.Base) {
			return fmt.Errorf("plugin %s: marker %s: base %s is not a known marker", p.manifest.ID, spec.Name, spec.Base)
		}
		if err := reg.Register(spec.Name, spec.Base, derive(reg, spec)); err != nil {
			return fmt.Errorf("plugin %s: %w", p.manifest.ID, err)
		}
	}
	return nil
}

// derive returns a factory that fills in spec's default arguments and
// delegates to the base marker's factory.
func derive(reg *protohost.Registry, spec MarkerSpec) protohost.Factory {
	defaults := maps.Clone(spec.Args)
	return func(decl annotation.Declared) (protohost.Marker, error) {
		factory, ok := reg.FactoryFor(spec.Base)
		if !ok {
			return nil, fmt.Errorf("base marker %s has no factory", spec.Base)
		}

		args := make(map[string]string, len(defaults)+len(decl.Args))
		maps.Copy(args, defaults)
		maps.Copy(args, decl.Args)
		decl.Args = args
		return factory(decl)
	}
}
