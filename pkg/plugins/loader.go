package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/protohost"
)

const (
	// CurrentAPIVersion is the manifest API version this build understands
	CurrentAPIVersion = "1.0.0"
)

// Loader discovers and loads plugins from filesystem directories
type Loader struct {
	pluginDirs    []string
	loadedPlugins map[string]*PluginInfo
	plugins       map[string]Plugin
	mu            sync.RWMutex
	log           *logrus.Logger
	now           func() time.Time
}

// NewLoader creates a new plugin loader
func NewLoader(dirs []string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Loader{
		pluginDirs:    dirs,
		loadedPlugins: make(map[string]*PluginInfo),
		plugins:       make(map[string]Plugin),
		log:           log,
		now:           time.Now,
	}
}

// DiscoverPlugins scans plugin directories and returns discovered plugins,
// sorted by ID. Directories that fail to load are logged and skipped.
func (l *Loader) DiscoverPlugins(ctx context.Context) ([]Plugin, error) {
	var plugins []Plugin

	for _, dir := range l.pluginDirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			l.log.Debugf("Plugin directory does not exist: %s", dir)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			l.log.Warnf("Failed to read plugin directory %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			pluginDir := filepath.Join(dir, entry.Name())
			if _, err := os.Stat(filepath.Join(pluginDir, ManifestFileName)); errors.Is(err, os.ErrNotExist) {
				continue
			}
			plugin, err := l.LoadPlugin(ctx, pluginDir)
			if err != nil {
				l.log.Warnf("Failed to load plugin from %s: %v", pluginDir, err)
				continue
			}

			plugins = append(plugins, plugin)
		}
	}

	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest().ID < plugins[j].Manifest().ID
	})
	return plugins, nil
}

// LoadPlugin loads and validates the plugin in dir
func (l *Loader) LoadPlugin(ctx context.Context, dir string) (Plugin, error) {
	manifest, err := LoadManifestFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	validationErrors := ValidateManifest(manifest)
	for _, v := range validationErrors {
		if v.Severity == SeverityWarning {
			l.log.WithField("plugin", manifest.ID).Debugf("manifest warning: %s", v)
		}
	}
	if HasErrors(validationErrors) {
		return nil, fmt.Errorf("manifest validation failed: %v", validationErrors)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Reloading an unchanged plugin (every target of a build, every watch
	// rebuild) is only worth a debug line.
	level := logrus.InfoLevel
	if existing, ok := l.loadedPlugins[manifest.ID]; ok {
		if existing.Source != dir {
			return nil, fmt.Errorf("plugin %s already loaded from %s", manifest.ID, existing.Source)
		}
		if existing.Manifest.Version == manifest.Version {
			level = logrus.DebugLevel
		}
	}

	plugin := NewMarkerPlugin(manifest, dir)
	l.plugins[manifest.ID] = plugin
	l.loadedPlugins[manifest.ID] = &PluginInfo{Manifest: manifest, LoadedAt: l.now(), Source: dir}

	l.log.Logf(level, "Loaded plugin: %s v%s (%d markers)", manifest.Name, manifest.Version, len(manifest.Markers))
	return plugin, nil
}

// InstallAll discovers every plugin and installs it into reg after its
// dependencies. Plugins whose dependencies are missing or fail are skipped
// and reported in the returned error; the others are still installed.
func (l *Loader) InstallAll(ctx context.Context, reg *protohost.Registry) ([]Plugin, error) {
	discovered, err := l.DiscoverPlugins(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Plugin, len(discovered))
	for _, p := range discovered {
		byID[p.Manifest().ID] = p
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	failed := make(map[string]error)
	var installed []Plugin
	var errs []error

	var install func(id string) error
	install = func(id string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("dependency cycle through %s", id)
		case done:
			return failed[id]
		}
		state[id] = visiting

		p, ok := byID[id]
		var err error
		if !ok {
			err = fmt.Errorf("plugin %s not found", id)
		} else {
			for _, dep := range p.Manifest().Dependencies {
				if depErr := install(dep); depErr != nil {
					err = fmt.Errorf("plugin %s: dependency %s: %w", id, dep, depErr)
					break
				}
			}
			if err == nil {
				err = p.Install(reg)
			}
		}

		state[id] = done
		if err != nil {
			failed[id] = err
			return err
		}
		installed = append(installed, p)
		l.log.WithField("plugin", id).Debug("installed plugin markers")
		return nil
	}

	for _, p := range discovered {
		id := p.Manifest().ID
		if state[id] == done {
			continue
		}
		if err := install(id); err != nil {
			errs = append(errs, err)
		}
	}
	return installed, errors.Join(errs...)
}

// GetLoadedPlugin returns a loaded plugin by ID
func (l *Loader) GetLoadedPlugin(id string) (Plugin, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	plugin, exists := l.plugins[id]
	return plugin, exists
}

// Info returns runtime information about a loaded plugin
func (l *Loader) Info(id string) (PluginInfo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	info, exists := l.loadedPlugins[id]
	if !exists {
		return PluginInfo{}, false
	}
	return *info, true
}

// ListLoadedPlugins returns all loaded plugins sorted by ID
func (l *Loader) ListLoadedPlugins() []Plugin {
	l.mu.RLock()
	defer l.mu.RUnlock()

	plugins := make([]Plugin, 0, len(l.plugins))
	for _, plugin := range l.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest().ID < plugins[j].Manifest().ID
	})
	return plugins
}

// GetDefaultPluginDirectories returns the default plugin search directories
func GetDefaultPluginDirectories() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}

	return []string{
		filepath.Join(homeDir, ".weaver", "plugins"),
		"/etc/weaver/plugins",
		"./plugins", // Current directory
	}
}
