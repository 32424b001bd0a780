package artifacts

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/weaver/pkg/diag"
	"github.com/platinummonkey/weaver/pkg/observability"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

const demoProto = `syntax = "proto3";

package demo.v1;

message Demo {
  string id = 1;
}
`

func buildOutput(t *testing.T) *protohost.Output {
	t.Helper()
	p, err := protohost.NewProgram([]protohost.Unit{{Path: "demo/v1/demo.proto", Content: demoProto}}, protohost.DefaultOptions())
	require.NoError(t, err)

	b := &protohost.Builder{
		Registry: protohost.NewRegistry(),
		Compiler: protohost.NewCompiler(protohost.DefaultCompilerConfig(), nil, nil),
	}
	sink := diag.NewBag(0)
	res := b.Build(context.Background(), p, sink)
	require.True(t, res.OK, sink.Diagnostics())
	return res.Output
}

func TestFromOutput(t *testing.T) {
	out := buildOutput(t)

	req, err := FromOutput("demo", out, map[string]string{"source": "demo"})
	require.NoError(t, err)

	paths := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{DescriptorSetFile, DescriptorJSONFile, "src/demo/v1/demo.proto"}, paths)
	assert.Equal(t, demoProto, string(req.Files[2].Content))

	binary, err := out.Bytes()
	require.NoError(t, err)
	assert.Equal(t, binary, req.Files[0].Content)

	assert.Equal(t, "demo", req.Metadata["source"])
	assert.Equal(t, out.Program().Hash(), req.Metadata[MetaProgramHash])
	assert.Equal(t, "0", req.Metadata[MetaRevision])
	assert.Equal(t, "1", req.Metadata[MetaFiles])
}

func TestFromOutput_Nil(t *testing.T) {
	_, err := FromOutput("demo", nil, nil)
	assert.ErrorIs(t, err, protohost.ErrNoOutput)
}

func TestNew(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, BackendFilesystem, m.Backend())
	require.NoError(t, m.Close())

	cfg.Backend = "ftp"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInstrumented_Store(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	m := Instrument(newFSManager(t), metrics, log)

	req, err := FromOutput("demo", buildOutput(t), nil)
	require.NoError(t, err)
	res, err := m.Store(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Hash)
	assert.Contains(t, buf.String(), "stored artifact")

	_, err = m.Store(ctx, &StoreRequest{Name: "../escape"})
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArtifactsStoredTotal.WithLabelValues(BackendFilesystem, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArtifactsStoredTotal.WithLabelValues(BackendFilesystem, "failure")))

	got, err := m.Retrieve(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, res.Hash, got.Hash)
}
