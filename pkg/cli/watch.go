package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/config"
	"github.com/platinummonkey/weaver/pkg/observability"
)

func newWatchCommand() *Command {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)

	var (
		delay       = flags.Duration("delay", 0, "Quiet period before rebuilding (default $WEAVER_WATCH_DELAY)")
		out         = flags.String("out", "", "Output directory of the filesystem backend")
		pluginDirs  = flags.String("plugins", "", "Comma separated plugin directories")
		metricsAddr = flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	)

	return &Command{
		Name:        "watch",
		Description: "Rebuild a proto directory whenever its files change",
		Flags:       flags,
		Run: func(args []string) error {
			if err := flags.Parse(args); err != nil {
				return err
			}
			dir := "."
			if flags.NArg() > 0 {
				dir = flags.Arg(0)
			}

			cfg, err := loadConfig(func(c *config.Config) {
				if *delay > 0 {
					c.Build.WatchDelay = *delay
				}
				if *out != "" {
					c.Artifacts.Dir = *out
				}
				if *pluginDirs != "" {
					c.Build.PluginDirs = splitList(*pluginDirs)
				}
				if *metricsAddr != "" {
					c.Observability.MetricsEnabled = true
					c.Observability.MetricsAddr = *metricsAddr
				}
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg, dir, nil)
		},
	}
}

// runWatch builds dir once, then again after every burst of changes, until
// ctx is done.
func runWatch(ctx context.Context, cfg *config.Config, dir string, logOut io.Writer) error {
	rt, err := newSession(ctx, cfg, logOut, sessionOptions{store: true, metrics: cfg.Observability.MetricsEnabled})
	if err != nil {
		return err
	}

	name := filepath.Base(dir)
	if abs, err := filepath.Abs(dir); err == nil {
		name = filepath.Base(abs)
	}

	var lastErr atomic.Pointer[error]
	health := observability.NewHealthChecker()
	health.AddCheck("last_build", false, func(context.Context) error {
		if err := lastErr.Load(); err != nil {
			return *err
		}
		return nil
	})
	if rt.store != nil {
		health.AddCheck("artifacts", true, func(ctx context.Context) error {
			_, err := rt.store.Exists(ctx, name)
			return err
		})
	}

	var server *http.Server
	if cfg.Observability.MetricsEnabled {
		server = observability.NewServer(cfg.Observability.MetricsAddr, rt.promRegistry, health)
		go func() {
			defer observability.RecoverPanic(rt.log, "metrics server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.log.WithError(err).Error("metrics server failed")
			}
		}()
		rt.log.WithField("addr", server.Addr).Info("serving metrics and health probes")
	}

	shutdown := observability.NewShutdownManager(rt.log, server, 0)
	shutdown.RegisterShutdownFunc(rt.close)
	defer func() {
		if err := shutdown.Shutdown(context.Background()); err != nil {
			rt.log.WithError(err).Warn("shutdown incomplete")
		}
	}()

	return watch(ctx, rt.log, dir, cfg.Build.WatchDelay, func(ctx context.Context) {
		result, err := rt.buildTarget(ctx, dir)
		if result != nil {
			printResult(output, result)
			if err == nil && !result.OK {
				err = fmt.Errorf("build of %s reported errors", dir)
			}
		}
		if err != nil {
			rt.log.WithError(err).Error("build failed")
			lastErr.Store(&err)
			return
		}
		lastErr.Store(nil)
	})
}

// watch runs rebuild once and then each time no .proto change under root
// has been seen for delay. Rebuild panics are logged and survived.
func watch(ctx context.Context, log *logrus.Logger, root string, delay time.Duration, rebuild func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addDirs(watcher, root); err != nil {
		return err
	}

	run := func() {
		defer observability.RecoverPanic(log, "watch rebuild")
		rebuild(ctx)
	}
	run()

	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	log.WithField("dir", root).Info("watching for proto changes")
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Also watch new directories
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addDirs(watcher, event.Name); err != nil {
						log.WithError(err).Warn("failed to watch new directory")
					}
					continue
				}
			}
			if filepath.Ext(event.Name) != ".proto" || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			log.WithFields(logrus.Fields{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("change detected")
			timer.Reset(delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case <-timer.C:
			run()
		}
	}
}

// addDirs watches root and every directory below it, skipping hidden ones
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
