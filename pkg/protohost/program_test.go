package protohost

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoProto = `syntax = "proto3";

// @weave:weave.Banner:text=hello,order=5
package demo.v1;

import "google/protobuf/timestamp.proto";

message Demo {
  string id = 1;
  google.protobuf.Timestamp created_at = 2;
}
`

const commonProto = `syntax = "proto3";

package demo.v1;

message Common {
  string name = 1;
}
`

func mustProgram(t *testing.T, units ...Unit) *Program {
	t.Helper()
	p, err := NewProgram(units, DefaultOptions())
	require.NoError(t, err)
	return p
}

func TestNewProgram(t *testing.T) {
	p := mustProgram(t,
		Unit{Path: "demo/v1/demo.proto", Content: demoProto},
		Unit{Path: "demo/v1/common.proto", Content: commonProto},
	)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"demo/v1/demo.proto", "demo/v1/common.proto"}, p.Paths())
	assert.Equal(t, DefaultOptions(), p.Options())

	require.Len(t, p.Annotations(), 1)
	assert.Equal(t, "weave.Banner", p.Annotations()[0].Type)
	assert.Equal(t, "demo/v1/demo.proto", p.Annotations()[0].Location.File)

	u, ok := p.Unit("demo/v1/common.proto")
	require.True(t, ok)
	assert.Equal(t, commonProto, u.Content)

	_, ok = p.Unit("missing.proto")
	assert.False(t, ok)
}

func TestNewProgram_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		units []Unit
		opts  Options
	}{
		{name: "duplicate", units: []Unit{{Path: "a.proto"}, {Path: "a.proto"}}, opts: DefaultOptions()},
		{name: "empty path", units: []Unit{{Path: ""}}, opts: DefaultOptions()},
		{name: "absolute path", units: []Unit{{Path: "/abs/a.proto"}}, opts: DefaultOptions()},
		{name: "not proto", units: []Unit{{Path: "a.txt"}}, opts: DefaultOptions()},
		{name: "bad options", units: nil, opts: Options{SourceInfo: "verbose"}},
		{name: "bad directive", units: []Unit{{Path: "a.proto", Content: "// @weave:x:novalue"}}, opts: DefaultOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProgram(tt.units, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestProgram_WithUnit(t *testing.T) {
	p := mustProgram(t, Unit{Path: "a.proto", Content: "syntax = \"proto3\";"})

	added, err := p.WithUnit(Unit{Path: "b.proto", Content: commonProto})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.proto", "b.proto"}, added.Paths())
	assert.Equal(t, 1, p.Len(), "original program is unchanged")

	replaced, err := added.WithUnit(Unit{Path: "a.proto", Content: demoProto})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.proto", "b.proto"}, replaced.Paths())
	u, _ := replaced.Unit("a.proto")
	assert.Equal(t, demoProto, u.Content)
	assert.Len(t, replaced.Annotations(), 1)

	removed := replaced.WithoutUnit("a.proto")
	assert.Equal(t, []string{"b.proto"}, removed.Paths())
	assert.Empty(t, removed.Annotations())
	assert.Same(t, removed, removed.WithoutUnit("missing.proto"))
}

func TestProgram_WithOptions(t *testing.T) {
	p := mustProgram(t, Unit{Path: "a.proto", Content: commonProto})

	next, err := p.WithOptions(Options{SourceInfo: SourceInfoNone, IncludeImports: true})
	require.NoError(t, err)
	assert.Equal(t, SourceInfoNone, next.Options().SourceInfo)
	assert.Equal(t, SourceInfoStandard, p.Options().SourceInfo)

	_, err = p.WithOptions(Options{SourceInfo: "bogus"})
	assert.Error(t, err)
}

func TestProgram_Hash(t *testing.T) {
	a := mustProgram(t, Unit{Path: "a.proto", Content: "x"}, Unit{Path: "b.proto", Content: "y"})
	b := mustProgram(t, Unit{Path: "b.proto", Content: "y"}, Unit{Path: "a.proto", Content: "x"})
	c := mustProgram(t, Unit{Path: "a.proto", Content: "x"}, Unit{Path: "b.proto", Content: "z"})

	assert.Equal(t, a.Hash(), b.Hash(), "order independent")
	assert.NotEqual(t, a.Hash(), c.Hash())

	d, err := a.WithOptions(Options{SourceInfo: SourceInfoNone})
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), d.Hash())
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"demo/v1/demo.proto":   {Data: []byte(demoProto)},
		"demo/v1/common.proto": {Data: []byte(commonProto)},
		"README.md":            {Data: []byte("# docs")},
		".git/x.proto":         {Data: []byte("ignored")},
	}

	p, err := LoadFS(fsys, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"demo/v1/common.proto", "demo/v1/demo.proto"}, p.Paths())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "common.proto"), []byte(commonProto), 0o644))

	p, err := LoadDir(dir, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/common.proto"}, p.Paths())
}
