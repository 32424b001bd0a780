package editors

import (
	"github.com/platinummonkey/weaver/pkg/annotation"
	"github.com/platinummonkey/weaver/pkg/diag"
)

func declared(marker string, args map[string]string) annotation.Declared {
	return annotation.Declared{
		Type:     marker,
		Args:     args,
		Location: diag.Location{File: "test.proto", Line: 1, Column: 4},
	}
}
