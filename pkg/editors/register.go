package editors

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/linter"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Built-in marker types
const (
	BannerMarker          = "weave.Banner"
	FileOptionMarker      = "weave.FileOption"
	StripSourceInfoMarker = "weave.StripSourceInfo"
	OptionsMarker         = "weave.Options"
	BundleMarker          = "weave.Bundle"
	LintMarker            = "weave.Lint"
)

// ListSeparator separates values inside a single directive argument, since
// commas separate the arguments themselves.
const ListSeparator = "|"

// Deps carries what the built-in editors need beyond their arguments.
type Deps struct {
	// LintConfig is the base config of weave.Lint. Nil means linter.DefaultConfig.
	LintConfig *linter.Config
	Logger     *logrus.Logger
}

func (d Deps) logger() *logrus.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// RegisterDefaults registers every built-in marker in reg.
func RegisterDefaults(reg *protohost.Registry, deps Deps) error {
	if deps.LintConfig == nil {
		deps.LintConfig = linter.DefaultConfig()
	}

	factories := []struct {
		name    string
		factory protohost.Factory
	}{
		{BannerMarker, NewBanner},
		{FileOptionMarker, NewFileOption},
		{StripSourceInfoMarker, NewStripSourceInfo},
		{OptionsMarker, NewOptions},
		{BundleMarker, BundleFactory(reg)},
		{LintMarker, LintFactory(deps.LintConfig, deps.logger())},
	}

	for _, f := range factories {
		if err := reg.Register(f.name, annotation.RootType, f.factory); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

// marker wraps editors produced by a declaration into a marker carrying the
// declaration's order.
func marker(decl annotation.Declared, editors ...protohost.Editor) (protohost.Marker, error) {
	order, err := decl.Order()
	if err != nil {
		return nil, err
	}
	return annotation.MarkerOf(order, editors...), nil
}

// editorName names an editor after its marker and, when present, its
// distinguishing argument.
func editorName(decl annotation.Declared, key string) string {
	if v := decl.Arg(key); v != "" {
		return decl.Type + "(" + v + ")"
	}
	return decl.Type
}
