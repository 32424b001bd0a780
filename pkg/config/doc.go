// Package config loads weaver settings from environment variables.
//
// Every setting has a default, so an empty environment yields a working
// filesystem-backed configuration.
//
// Build settings:
//
//	WEAVER_PLUGIN_DIRS="./plugins:/etc/weaver/plugins"
//	WEAVER_MAX_DIAGNOSTICS="100"
//	WEAVER_LINT_CONFIG_DIR="."
//	WEAVER_WATCH_DELAY="300ms"
//
// Compile cache:
//
//	WEAVER_CACHE_SIZE="64"   # 0 disables the cache
//	WEAVER_CACHE_TTL="30m"
//
// Artifact storage:
//
//	WEAVER_ARTIFACT_BACKEND="filesystem"  # filesystem, s3
//	WEAVER_OUTPUT_DIR="weaver-out"
//	WEAVER_S3_BUCKET="weaver-artifacts"
//	WEAVER_S3_REGION="us-east-1"
//	WEAVER_S3_PREFIX="weaver/"
//	WEAVER_S3_ENDPOINT="http://localhost:9000"
//	WEAVER_S3_USE_PATH_STYLE="true"
//
// Observability:
//
//	WEAVER_LOG_LEVEL="info"
//	WEAVER_LOG_FORMAT="text"  # text, json
//	WEAVER_METRICS_ENABLED="true"
//	WEAVER_METRICS_ADDR=":9090"
//	WEAVER_OTEL_ENABLED="true"
//	WEAVER_OTEL_ENDPOINT="localhost:4317"
//	WEAVER_OTEL_SAMPLE_RATIO="0.1"
//
// Usage:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
