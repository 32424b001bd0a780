package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/weaver/pkg/artifacts"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "WEAVER_TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "WEAVER_TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, getEnv(tt.key, tt.defaultValue))
		})
	}
}

func TestGetEnvTyped(t *testing.T) {
	t.Setenv("WEAVER_TEST_BOOL", "1")
	t.Setenv("WEAVER_TEST_INT", "12")
	t.Setenv("WEAVER_TEST_BAD_INT", "twelve")
	t.Setenv("WEAVER_TEST_DURATION", "2s")
	t.Setenv("WEAVER_TEST_BAD_DURATION", "soon")

	assert.True(t, getEnvBool("WEAVER_TEST_BOOL", false))
	assert.True(t, getEnvBool("WEAVER_TEST_UNSET", true))
	assert.Equal(t, 12, getEnvInt("WEAVER_TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("WEAVER_TEST_BAD_INT", 7))
	assert.Equal(t, 2*time.Second, getEnvDuration("WEAVER_TEST_DURATION", 0))
	assert.Equal(t, time.Minute, getEnvDuration("WEAVER_TEST_BAD_DURATION", time.Minute))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, artifacts.BackendFilesystem, cfg.Artifacts.Backend)
	assert.Equal(t, "weaver-out", cfg.Artifacts.Dir)
	assert.Equal(t, 64, cfg.Compiler.CacheSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Build.WatchDelay)
	assert.NotEmpty(t, cfg.Build.PluginDirs)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("WEAVER_LOG_LEVEL", "debug")
	t.Setenv("WEAVER_LOG_FORMAT", "json")
	t.Setenv("WEAVER_PLUGIN_DIRS", "a"+string(filepath.ListSeparator)+"b, c")
	t.Setenv("WEAVER_MAX_DIAGNOSTICS", "50")
	t.Setenv("WEAVER_CACHE_SIZE", "0")
	t.Setenv("WEAVER_ARTIFACT_BACKEND", "S3")
	t.Setenv("WEAVER_S3_BUCKET", "builds")
	t.Setenv("WEAVER_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("WEAVER_S3_USE_PATH_STYLE", "true")
	t.Setenv("WEAVER_METRICS_ENABLED", "true")
	t.Setenv("WEAVER_WATCH_DELAY", "1s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Build.PluginDirs)
	assert.Equal(t, 50, cfg.Build.MaxDiagnostics)
	assert.Equal(t, 0, cfg.Compiler.CacheSize)
	assert.Equal(t, artifacts.BackendS3, cfg.Artifacts.Backend)
	assert.Equal(t, "builds", cfg.Artifacts.S3Bucket)
	assert.True(t, cfg.Artifacts.S3UsePathStyle)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, ":9090", cfg.Observability.MetricsAddr)
	assert.Equal(t, time.Second, cfg.Build.WatchDelay)

	otel := cfg.Observability.OTel()
	assert.Equal(t, "weaver", otel.ServiceName)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "log level",
			env:     map[string]string{"WEAVER_LOG_LEVEL": "loud"},
			wantErr: "invalid log level",
		},
		{
			name:    "log format",
			env:     map[string]string{"WEAVER_LOG_FORMAT": "xml"},
			wantErr: "invalid log format",
		},
		{
			name:    "negative diagnostics",
			env:     map[string]string{"WEAVER_MAX_DIAGNOSTICS": "-1"},
			wantErr: "max diagnostics",
		},
		{
			name:    "s3 without bucket",
			env:     map[string]string{"WEAVER_ARTIFACT_BACKEND": "s3"},
			wantErr: "requires a bucket",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"WEAVER_ARTIFACT_BACKEND": "ftp"},
			wantErr: "unknown artifact backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_OTel(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Observability.OTelEnabled = true
	cfg.Observability.OTelEndpoint = ""
	assert.ErrorContains(t, cfg.Validate(), "endpoint")

	cfg.Observability.OTelEndpoint = "localhost:4317"
	cfg.Observability.OTelServiceName = ""
	assert.ErrorContains(t, cfg.Validate(), "service name")

	cfg.Observability.OTelServiceName = "weaver"
	cfg.Observability.OTelSampleRatio = 1.5
	assert.ErrorContains(t, cfg.Validate(), "sample ratio")

	cfg.Observability.OTelSampleRatio = 0.25
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.25, cfg.Observability.OTel().SampleRatio)
}

func TestSplitPathList(t *testing.T) {
	assert.Nil(t, splitPathList(""))
	assert.Equal(t, []string{"x"}, splitPathList(" x ,,"))
}
