package plugins

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Validator checks manifests against a marker registry before installation
type Validator struct {
	registry *protohost.Registry
	logger   *logrus.Logger
	now      func() time.Time
}

// NewValidator creates a validator resolving bases in registry
func NewValidator(registry *protohost.Registry, logger *logrus.Logger) *Validator {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Validator{registry: registry, logger: logger, now: time.Now}
}

// Validate runs ValidateManifest and checks every marker against the
// registry without modifying it.
func (v *Validator) Validate(manifest *Manifest) PluginValidationResult {
	started := v.now()
	result := PluginValidationResult{
		ManifestErrors: ValidateManifest(manifest),
	}

	local := make(map[string]bool)
	for i, spec := range manifest.Markers {
		field := fmt.Sprintf("markers[%d]", i)

		if _, exists := v.registry.Base(spec.Name); exists && spec.Name != "" {
			result.MarkerErrors = append(result.MarkerErrors, ValidationError{
				Field:    field + ".name",
				Message:  fmt.Sprintf("Marker %s is already defined", spec.Name),
				Severity: SeverityError,
			})
		}

		switch {
		case spec.Base == "":
		case local[spec.Base]:
		case !v.registry.IsMarker(spec.Base):
			result.MarkerErrors = append(result.MarkerErrors, ValidationError{
				Field:    field + ".base",
				Message:  fmt.Sprintf("Base %s is not a known marker", spec.Base),
				Severity: SeverityError,
			})
		default:
			if err := v.tryConstruct(spec); err != nil {
				result.MarkerErrors = append(result.MarkerErrors, ValidationError{
					Field:    field + ".args",
					Message:  fmt.Sprintf("Defaults alone do not construct %s: %v", spec.Name, err),
					Severity: SeverityWarning,
				})
			}
		}
		local[spec.Name] = true

		if spec.Description == "" {
			result.Recommendations = append(result.Recommendations, fmt.Sprintf("Describe marker %s", spec.Name))
		}
	}

	result.Valid = !HasErrors(result.ManifestErrors) && !HasErrors(result.MarkerErrors)
	result.ScanDuration = v.now().Sub(started)

	v.logger.WithFields(logrus.Fields{
		"plugin": manifest.ID,
		"valid":  result.Valid,
	}).Debug("validated plugin manifest")
	return result
}

// tryConstruct builds spec's marker from its defaults alone. Editors are
// constructed but never initialized.
func (v *Validator) tryConstruct(spec MarkerSpec) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	marker, err := derive(v.registry, spec)(annotation.Declared{
		Type:     spec.Name,
		Location: diag.Location{File: ManifestFileName},
	})
	if err != nil {
		return err
	}
	if marker == nil {
		return fmt.Errorf("factory returned no marker")
	}
	return nil
}
