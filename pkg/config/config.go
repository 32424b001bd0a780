package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/weaver/pkg/artifacts"
	"github.com/platinummonkey/weaver/pkg/observability"
	"github.com/platinummonkey/weaver/pkg/plugins"
	"github.com/platinummonkey/weaver/pkg/protohost"
)

// Config holds all application configuration
type Config struct {
	// Build configuration
	Build BuildConfig

	// Compile cache configuration
	Compiler protohost.CompilerConfig

	// Artifact storage configuration
	Artifacts artifacts.Config

	// Observability configuration
	Observability ObservabilityConfig
}

// BuildConfig holds settings for build and watch runs
type BuildConfig struct {
	PluginDirs     []string
	MaxDiagnostics int    // 0 keeps every diagnostic
	LintConfigDir  string // directory holding .weaver-lint.yaml; empty uses each target
	WatchDelay     time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Metrics
	MetricsEnabled bool
	MetricsAddr    string

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool    // Use insecure gRPC connection
	OTelSampleRatio    float64 // Fraction of builds traced
}

// OTel returns the OpenTelemetry settings
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
		SampleRatio:    o.OTelSampleRatio,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Build:         loadBuildConfig(),
		Compiler:      loadCompilerConfig(),
		Artifacts:     loadArtifactsConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadBuildConfig loads build configuration from environment
func loadBuildConfig() BuildConfig {
	dirs := plugins.GetDefaultPluginDirectories()
	if value := getEnv("WEAVER_PLUGIN_DIRS", ""); value != "" {
		dirs = splitPathList(value)
	}

	return BuildConfig{
		PluginDirs:     dirs,
		MaxDiagnostics: getEnvInt("WEAVER_MAX_DIAGNOSTICS", 0),
		LintConfigDir:  getEnv("WEAVER_LINT_CONFIG_DIR", ""),
		WatchDelay:     getEnvDuration("WEAVER_WATCH_DELAY", 300*time.Millisecond),
	}
}

// loadCompilerConfig loads compile cache configuration from environment
func loadCompilerConfig() protohost.CompilerConfig {
	cfg := protohost.DefaultCompilerConfig()
	if size := getEnvInt("WEAVER_CACHE_SIZE", -1); size >= 0 {
		cfg.CacheSize = size
	}
	if ttl := getEnvDuration("WEAVER_CACHE_TTL", 0); ttl > 0 {
		cfg.CacheTTL = ttl
	}
	return cfg
}

// loadArtifactsConfig loads artifact storage configuration from environment
func loadArtifactsConfig() artifacts.Config {
	cfg := *artifacts.DefaultConfig()

	if backend := getEnv("WEAVER_ARTIFACT_BACKEND", ""); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}
	if dir := getEnv("WEAVER_OUTPUT_DIR", ""); dir != "" {
		cfg.Dir = dir
	}

	// S3 config
	cfg.S3Bucket = getEnv("WEAVER_S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("WEAVER_S3_REGION", cfg.S3Region)
	cfg.S3Prefix = getEnv("WEAVER_S3_PREFIX", cfg.S3Prefix)
	cfg.S3Endpoint = getEnv("WEAVER_S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKey = getEnv("WEAVER_S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnv("WEAVER_S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.S3UsePathStyle = getEnvBool("WEAVER_S3_USE_PATH_STYLE", cfg.S3UsePathStyle)
	cfg.EnableChecksum = getEnvBool("WEAVER_ARTIFACT_CHECKSUM", cfg.EnableChecksum)

	return cfg
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           getEnv("WEAVER_LOG_LEVEL", "info"),
		LogFormat:          getEnv("WEAVER_LOG_FORMAT", observability.FormatText),
		MetricsEnabled:     getEnvBool("WEAVER_METRICS_ENABLED", false),
		MetricsAddr:        getEnv("WEAVER_METRICS_ADDR", ":9090"),
		OTelEnabled:        getEnvBool("WEAVER_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("WEAVER_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("WEAVER_OTEL_SERVICE_NAME", "weaver"),
		OTelServiceVersion: getEnv("WEAVER_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("WEAVER_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("WEAVER_OTEL_SAMPLE_RATIO", 1),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Observability.LogLevel)
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "", observability.FormatText, observability.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	if c.Build.MaxDiagnostics < 0 {
		return fmt.Errorf("max diagnostics cannot be negative")
	}
	if c.Build.WatchDelay <= 0 {
		return fmt.Errorf("watch delay must be positive")
	}
	if c.Compiler.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}

	if err := c.Artifacts.Validate(); err != nil {
		return fmt.Errorf("artifacts: %w", err)
	}

	if c.Observability.MetricsEnabled && c.Observability.MetricsAddr == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
		if r := c.Observability.OTelSampleRatio; r < 0 || r > 1 {
			return fmt.Errorf("OpenTelemetry sample ratio must be between 0 and 1, got %g", r)
		}
	}

	return nil
}

// splitPathList splits a list of directories on the OS list separator or
// commas, dropping empty entries.
func splitPathList(value string) []string {
	var dirs []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == filepath.ListSeparator || r == ','
	}) {
		if part = strings.TrimSpace(part); part != "" {
			dirs = append(dirs, part)
		}
	}
	return dirs
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
