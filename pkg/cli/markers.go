package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/platinummonkey/weaver/pkg/config"
)

func newMarkersCommand() *Command {
	fs := flag.NewFlagSet("markers", flag.ContinueOnError)
	pluginDirs := fs.String("plugins", "", "Comma separated plugin directories")

	return &Command{
		Name:        "markers",
		Description: "List the marker types available to directives",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			cfg, err := loadConfig(func(c *config.Config) {
				if *pluginDirs != "" {
					c.Build.PluginDirs = splitList(*pluginDirs)
				}
			})
			if err != nil {
				return err
			}
			return runMarkers(context.Background(), cfg, nil)
		},
	}
}

// runMarkers prints every registered marker type with its base
func runMarkers(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	rt, err := newSession(ctx, cfg, logOut, sessionOptions{})
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	reg, err := rt.registry(ctx, ".")
	if err != nil {
		return err
	}

	types := reg.Types()
	fmt.Fprintf(output, "Available markers (%d):\n\n", len(types))
	for _, name := range types {
		base, _ := reg.Base(name)
		fmt.Fprintf(output, "  %-28s %s\n", name, base)
	}
	return nil
}
