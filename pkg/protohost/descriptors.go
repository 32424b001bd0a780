package protohost

import (
	"sync"

	"github.com/platinummonkey/weaver/pkg/diag"
)

// Diagnostic IDs reported by the protobuf host.
const (
	CompileErrorID   = "WV1001"
	CompileWarningID = "WV1002"
	LintFindingID    = "WV1101"
)

var (
	descriptors     *diag.Table
	descriptorsOnce sync.Once
)

// Descriptors returns the default table extended with the host's
// descriptors.
func Descriptors() *diag.Table {
	descriptorsOnce.Do(func() {
		t, err := diag.DefaultTable().Extend(
			diag.Descriptor{
				ID:       CompileErrorID,
				Title:    "Proto compilation error",
				Format:   "%s",
				Category: "protobuf",
				Severity: diag.SevError,
			},
			diag.Descriptor{
				ID:       CompileWarningID,
				Title:    "Proto compilation warning",
				Format:   "%s",
				Category: "protobuf",
				Severity: diag.SevWarning,
			},
			diag.Descriptor{
				ID:       LintFindingID,
				Title:    "Proto lint finding",
				Format:   "%s: %s",
				Category: "lint",
				Severity: diag.SevWarning,
			},
		)
		if err != nil {
			panic(err)
		}
		descriptors = t
	})
	return descriptors
}
