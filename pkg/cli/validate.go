package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/platinummonkey/weaver/pkg/config"
	"github.com/platinummonkey/weaver/pkg/plugins"
)

func newValidateCommand() *Command {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	pluginDirs := fs.String("plugins", "", "Comma separated plugin directories installed before validating")

	return &Command{
		Name:        "validate",
		Description: "Validate plugin manifests against the available markers",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() == 0 {
				return fmt.Errorf("usage: weaver validate [-plugins dirs] <plugin.yaml|dir>...")
			}

			cfg, err := loadConfig(func(c *config.Config) {
				// Only explicitly named plugins; the manifests under test may
				// live in the default directories.
				c.Build.PluginDirs = splitList(*pluginDirs)
			})
			if err != nil {
				return err
			}
			return runValidate(context.Background(), cfg, fs.Args(), nil)
		},
	}
}

// runValidate validates each manifest and prints its findings
func runValidate(ctx context.Context, cfg *config.Config, paths []string, logOut io.Writer) error {
	rt, err := newSession(ctx, cfg, logOut, sessionOptions{})
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	reg, err := rt.registry(ctx, ".")
	if err != nil {
		return err
	}
	validator := plugins.NewValidator(reg, rt.log)

	invalid := 0
	for _, path := range paths {
		manifest, err := loadManifest(path)
		if err != nil {
			fmt.Fprintf(output, "%s: %v\n", path, err)
			invalid++
			continue
		}

		result := validator.Validate(manifest)
		status := "valid"
		if !result.Valid {
			status = "invalid"
			invalid++
		}
		fmt.Fprintf(output, "%s: %s (%s v%s)\n", path, status, manifest.ID, manifest.Version)

		for _, e := range append(result.ManifestErrors, result.MarkerErrors...) {
			fmt.Fprintf(output, "  %-7s %s\n", e.Severity, e.Error())
		}
		for _, r := range result.Recommendations {
			fmt.Fprintf(output, "  hint    %s\n", r)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d manifests invalid", invalid, len(paths))
	}
	return nil
}

func loadManifest(path string) (*plugins.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return plugins.LoadManifestFromDir(path)
	}
	return plugins.LoadManifest(path)
}
