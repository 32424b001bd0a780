package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/weaver/pkg/annotation"
)

// ManifestFileName is the manifest file looked up in plugin directories.
const ManifestFileName = "plugin.yaml"

// ReservedPrefix is the namespace of the built-in markers.
const ReservedPrefix = "weave."

var (
	semverRegex     = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
	pluginIDRegex   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
	markerNameRegex = regexp.MustCompile(`^[A-Za-z_]\w*(\.[A-Za-z_]\w*)+$`)
	urlRegex        = regexp.MustCompile(`^https?://[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// LoadManifest loads and parses a plugin manifest from a file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// LoadManifestFromDir loads a plugin manifest from a directory (looks for plugin.yaml)
func LoadManifestFromDir(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, ManifestFileName))
}

// SaveManifest saves a plugin manifest to a file
func SaveManifest(manifest *Manifest, path string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ValidateManifest checks a manifest on its own, without a registry.
// Warnings do not prevent loading.
func ValidateManifest(manifest *Manifest) []ValidationError {
	var errors []ValidationError
	fail := func(field, format string, args ...any) {
		errors = append(errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	warn := func(field, format string, args ...any) {
		errors = append(errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	// Required fields
	if manifest.ID == "" {
		fail("id", "Plugin ID is required")
	} else if !isValidPluginID(manifest.ID) {
		fail("id", "Plugin ID must be lowercase alphanumeric with hyphens (e.g., 'acme-style')")
	}

	if manifest.Name == "" {
		fail("name", "Plugin name is required")
	}

	if manifest.Version == "" {
		fail("version", "Version is required")
	} else if !isValidSemver(manifest.Version) {
		fail("version", "Invalid semver format: %s", manifest.Version)
	}

	if manifest.APIVersion == "" {
		fail("api_version", "API version is required")
	} else if !isValidSemver(manifest.APIVersion) {
		fail("api_version", "Invalid semver format: %s", manifest.APIVersion)
	} else if !IsCompatibleAPIVersion(manifest.APIVersion, CurrentAPIVersion) {
		fail("api_version", "Incompatible API version %s (supported: %s)", manifest.APIVersion, CurrentAPIVersion)
	}

	if manifest.Type != PluginTypeMarkers {
		fail("type", "Invalid plugin type: %s (only 'markers' is supported)", manifest.Type)
	}

	if manifest.Author == "" {
		warn("author", "Author is required")
	}
	if manifest.License == "" {
		warn("license", "License should be specified")
	}
	if manifest.Homepage != "" && !isValidURL(manifest.Homepage) {
		warn("homepage", "Homepage URL appears invalid")
	}

	for _, dep := range manifest.Dependencies {
		if dep == manifest.ID {
			fail("dependencies", "Plugin cannot depend on itself")
		}
	}

	if len(manifest.Markers) == 0 {
		fail("markers", "At least one marker is required")
	}
	seen := make(map[string]bool)
	for i, m := range manifest.Markers {
		field := fmt.Sprintf("markers[%d]", i)
		switch {
		case m.Name == "":
			fail(field+".name", "Marker name is required")
		case !markerNameRegex.MatchString(m.Name):
			fail(field+".name", "Marker name %q must be dotted, e.g. 'acme.GoPackage'", m.Name)
		case strings.HasPrefix(m.Name, ReservedPrefix) || m.Name == annotation.RootType:
			fail(field+".name", "Marker name %q uses the reserved %q namespace", m.Name, ReservedPrefix)
		case seen[m.Name]:
			fail(field+".name", "Duplicate marker %s", m.Name)
		}
		seen[m.Name] = true

		if m.Base == "" {
			fail(field+".base", "Base marker is required")
		} else if m.Base == m.Name {
			fail(field+".base", "Marker %s cannot derive from itself", m.Name)
		}
		if _, ok := m.Args[annotation.OrderArg]; ok {
			warn(field+".args", "Default %q is overridden by every directive that sets it", annotation.OrderArg)
		}
	}

	return errors
}

// isValidSemver checks if a version string follows semantic versioning
func isValidSemver(version string) bool {
	return semverRegex.MatchString(version)
}

// IsCompatibleAPIVersion checks if a plugin's API version is compatible with the current one
func IsCompatibleAPIVersion(pluginAPIVersion, currentAPIVersion string) bool {
	// v1.x.x is compatible with v1.y.z
	return extractMajorVersion(pluginAPIVersion) == extractMajorVersion(currentAPIVersion)
}

func extractMajorVersion(version string) string {
	matches := semverRegex.FindStringSubmatch(version)
	if len(matches) > 1 {
		return matches[1]
	}
	return "0"
}

func isValidPluginID(id string) bool {
	return pluginIDRegex.MatchString(id)
}

func isValidURL(url string) bool {
	return urlRegex.MatchString(url)
}
