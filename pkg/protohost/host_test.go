package protohost

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/observability"
)

func TestCompiler_Compile(t *testing.T) {
	c := NewCompiler(CompilerConfig{}, nil, nil)
	p := mustProgram(t,
		Unit{Path: "demo/v1/demo.proto", Content: demoProto},
		Unit{Path: "demo/v1/common.proto", Content: commonProto},
	)

	set, err := c.Compile(context.Background(), p, nil)
	require.NoError(t, err)

	var names []string
	for _, f := range set.GetFile() {
		names = append(names, f.GetName())
	}
	assert.Equal(t, []string{"demo/v1/demo.proto", "demo/v1/common.proto"}, names)
	assert.NotNil(t, set.GetFile()[0].GetSourceCodeInfo())
	assert.Equal(t, "demo.v1", set.GetFile()[0].GetPackage())
}

func TestCompiler_IncludeImports(t *testing.T) {
	c := NewCompiler(CompilerConfig{}, nil, nil)
	p, err := NewProgram([]Unit{{Path: "demo.proto", Content: demoProto}}, Options{
		SourceInfo:     SourceInfoNone,
		IncludeImports: true,
	})
	require.NoError(t, err)

	set, err := c.Compile(context.Background(), p, nil)
	require.NoError(t, err)
	require.Len(t, set.GetFile(), 2)
	assert.Equal(t, "google/protobuf/timestamp.proto", set.GetFile()[0].GetName(), "dependencies first")
	assert.Equal(t, "demo.proto", set.GetFile()[1].GetName())
	assert.Nil(t, set.GetFile()[1].GetSourceCodeInfo())
}

func TestCompiler_ErrorsArePrecise(t *testing.T) {
	c := NewCompiler(CompilerConfig{}, nil, nil)
	p := mustProgram(t, Unit{Path: "broken.proto", Content: "syntax = \"proto3\";\n\nmessage Broken {\n  strin id = 1;\n}\n"})

	_, err := c.Compile(context.Background(), p, nil)
	require.Error(t, err)

	var precise *diag.Error
	require.True(t, errors.As(err, &precise))
	assert.Equal(t, CompileErrorID, precise.Diagnostic.ID())
	assert.Equal(t, "broken.proto", precise.Diagnostic.Location.File)
	assert.Equal(t, 4, precise.Diagnostic.Location.Line)
}

func TestCompiler_Cache(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	c := NewCompiler(DefaultCompilerConfig(), metrics, nil)
	p := mustProgram(t, Unit{Path: "common.proto", Content: commonProto})

	first, err := c.Compile(context.Background(), p, nil)
	require.NoError(t, err)
	first.File[0].Package = proto.String("mutated")

	second, err := c.Compile(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, "demo.v1", second.GetFile()[0].GetPackage(), "cached results are isolated from callers")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHitsTotal))

	c.Purge()
	_, err = c.Compile(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheMissesTotal))
}

func TestCompiler_CacheReplaysWarnings(t *testing.T) {
	c := NewCompiler(DefaultCompilerConfig(), nil, nil)
	p := mustProgram(t, Unit{Path: "unused.proto", Content: "syntax = \"proto3\";\n\nimport \"google/protobuf/empty.proto\";\n\nmessage Plain {\n  string id = 1;\n}\n"})

	first := diag.NewBag(0)
	_, err := c.Compile(context.Background(), p, first)
	require.NoError(t, err)
	require.NotZero(t, first.Len())

	second := diag.NewBag(0)
	_, err = c.Compile(context.Background(), p, second)
	require.NoError(t, err)
	assert.Equal(t, first.Diagnostics(), second.Diagnostics(), "a cache hit reports the same warnings")
	assert.Equal(t, CompileWarningID, second.Diagnostics()[0].ID())
	assert.Equal(t, "unused.proto", second.Diagnostics()[0].Location.File)
}

func TestHost(t *testing.T) {
	h := NewHost(NewCompiler(CompilerConfig{}, nil, nil), diag.NewBag(0))
	p := mustProgram(t, Unit{Path: "common.proto", Content: commonProto})

	out, err := h.Emit(context.Background(), p)
	require.NoError(t, err)
	assert.Same(t, p, out.Program())
	assert.Equal(t, []string{"common.proto"}, out.Files())

	sym, err := h.AssemblySymbol(out)
	require.NoError(t, err)
	sym.File[0].Package = proto.String("changed")
	assert.Equal(t, 0, out.Revision())
	f, ok := out.File("common.proto")
	require.True(t, ok)
	assert.Equal(t, "demo.v1", f.GetPackage(), "symbol edits do not leak into the output")

	require.NoError(t, h.SetAssemblySymbol(out, sym))
	assert.Equal(t, 1, out.Revision())
	f, _ = out.File("common.proto")
	assert.Equal(t, "changed", f.GetPackage())

	raw, err := out.Bytes()
	require.NoError(t, err)
	var decoded descriptorpb.FileDescriptorSet
	require.NoError(t, proto.Unmarshal(raw, &decoded))
	assert.Equal(t, "changed", decoded.GetFile()[0].GetPackage())

	js, err := out.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(js), `"changed"`)

	_, err = h.AssemblySymbol(nil)
	assert.ErrorIs(t, err, ErrNoOutput)
	assert.ErrorIs(t, h.SetAssemblySymbol(nil, sym), ErrNoOutput)
	assert.Error(t, h.SetAssemblySymbol(out, nil))
}
