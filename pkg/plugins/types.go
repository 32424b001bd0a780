package plugins

import (
	"time"

	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Plugin is the base interface all plugins must implement
type Plugin interface {
	Manifest() *Manifest
	// Install defines the plugin's markers in reg.
	Install(reg *protohost.Registry) error
}

// Manifest describes plugin metadata
type Manifest struct {
	ID           string            `yaml:"id"`           // Unique ID (e.g., "acme-style")
	Name         string            `yaml:"name"`         // Display name
	Version      string            `yaml:"version"`      // Semver
	APIVersion   string            `yaml:"api_version"`  // Plugin API version
	Description  string            `yaml:"description"`  // Short description
	Author       string            `yaml:"author"`       // Author name
	License      string            `yaml:"license"`      // License (e.g., MIT, Apache-2.0)
	Homepage     string            `yaml:"homepage"`     // Homepage URL
	Type         PluginType        `yaml:"type"`         // Plugin type
	Markers      []MarkerSpec      `yaml:"markers"`      // Marker types the plugin defines
	Dependencies []string          `yaml:"dependencies"` // Other plugin IDs
	Metadata     map[string]string `yaml:"metadata"`     // Additional metadata
}

// MarkerSpec derives a marker type from an existing one.
type MarkerSpec struct {
	Name        string            `yaml:"name"`
	Base        string            `yaml:"base"`
	Description string            `yaml:"description,omitempty"`
	Args        map[string]string `yaml:"args,omitempty"` // defaults, overridden by the directive
}

// PluginType defines the category of plugin
type PluginType string

const (
	PluginTypeMarkers PluginType = "markers"
)

// PluginInfo contains runtime information about a loaded plugin
type PluginInfo struct {
	Manifest *Manifest
	LoadedAt time.Time
	Source   string // directory the manifest was read from
}

// ValidationError represents a manifest validation error
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// PluginValidationResult contains the complete plugin validation results
type PluginValidationResult struct {
	Valid           bool              `json:"valid"`
	ManifestErrors  []ValidationError `json:"manifest_errors,omitempty"`
	MarkerErrors    []ValidationError `json:"marker_errors,omitempty"`
	ScanDuration    time.Duration     `json:"scan_duration"`
	Recommendations []string          `json:"recommendations,omitempty"`
}

// Severity values of ValidationError
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// HasErrors reports whether any entry has error severity
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity != SeverityWarning {
			return true
		}
	}
	return false
}
