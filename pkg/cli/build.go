package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	goruntime "runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/weaver/pkg/config"
)

func newBuildCommand() *Command {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)

	var (
		out        = fs.String("out", "", "Output directory of the filesystem backend (default $WEAVER_OUTPUT_DIR)")
		backend    = fs.String("backend", "", "Artifact backend: filesystem, s3")
		pluginDirs = fs.String("plugins", "", "Comma separated plugin directories")
		lintConfig = fs.String("lint-config", "", "Directory holding the lint config (default: each target)")
		maxDiags   = fs.Int("max-diagnostics", -1, "Diagnostics kept per target, 0 for all")
		jobs       = fs.Int("jobs", goruntime.NumCPU(), "Targets built in parallel")
		dryRun     = fs.Bool("dry-run", false, "Build without storing artifacts")
	)

	return &Command{
		Name:        "build",
		Description: "Compile proto directories through their markers and store the results",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			dirs := fs.Args()
			if len(dirs) == 0 {
				dirs = []string{"."}
			}

			cfg, err := loadConfig(func(c *config.Config) {
				if *out != "" {
					c.Artifacts.Dir = *out
				}
				if *backend != "" {
					c.Artifacts.Backend = *backend
				}
				if *pluginDirs != "" {
					c.Build.PluginDirs = splitList(*pluginDirs)
				}
				if *lintConfig != "" {
					c.Build.LintConfigDir = *lintConfig
				}
				if *maxDiags >= 0 {
					c.Build.MaxDiagnostics = *maxDiags
				}
			})
			if err != nil {
				return err
			}

			return runBuild(context.Background(), cfg, dirs, *jobs, !*dryRun, nil)
		},
	}
}

// runBuild builds every directory, at most jobs at a time, and prints the
// results in argument order.
func runBuild(ctx context.Context, cfg *config.Config, dirs []string, jobs int, store bool, logOut io.Writer) error {
	rt, err := newSession(ctx, cfg, logOut, sessionOptions{store: store})
	if err != nil {
		return err
	}
	defer rt.close(context.Background())

	if jobs < 1 {
		jobs = 1
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	results := make([]*targetResult, len(dirs))
	for i, dir := range dirs {
		eg.Go(func() error {
			result, err := rt.buildTarget(ctx, dir)
			results[i] = result
			return err
		})
	}
	err = eg.Wait()

	var failed []string
	for _, r := range results {
		if r == nil {
			continue
		}
		printResult(output, r)
		if !r.OK {
			failed = append(failed, r.Dir)
		}
	}

	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("build failed: %s", strings.Join(failed, ", "))
	}
	return nil
}
