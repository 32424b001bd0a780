package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/weaver/pkg/artifacts"
	"github.com/platinummonkey/weaver/pkg/config"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

const apiProto = `syntax = "proto3";

package demo.v1;

// User is a user.
message User {
  string id = 1;
}
`

// captureOutput redirects command output into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := output
	output = &buf
	t.Cleanup(func() { output = prev })
	return &buf
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Build: config.BuildConfig{
			WatchDelay: 20 * time.Millisecond,
		},
		Compiler:  protohost.DefaultCompilerConfig(),
		Artifacts: *artifacts.DefaultConfig(),
		Observability: config.ObservabilityConfig{
			LogLevel:  "error",
			LogFormat: "text",
		},
	}
	cfg.Artifacts.Dir = filepath.Join(t.TempDir(), "out")
	require.NoError(t, cfg.Validate())
	return cfg
}

// writeTree creates files below a new temporary directory named name.
func writeTree(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

