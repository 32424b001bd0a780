package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/weaver/pkg/observability"
)

// Object metadata keys reserved by the S3 manager
const (
	metaChecksum    = "checksum-sha256"
	metaContentHash = "content-hash"
)

// S3API is the subset of the S3 client the manager uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Manager stores each artifact as one tar.gz object
type S3Manager struct {
	client S3API
	config *Config
	tracer trace.Tracer
}

// NewS3Manager creates an S3 artifact manager from the default AWS
// credential chain, or from static keys when cfg carries them.
func NewS3Manager(ctx context.Context, cfg *Config) (*S3Manager, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		// Static credentials, e.g. for MinIO
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return NewS3ManagerWithClient(client, cfg), nil
}

// NewS3ManagerWithClient creates an S3 manager over an existing client
func NewS3ManagerWithClient(client S3API, cfg *Config) *S3Manager {
	return &S3Manager{
		client: client,
		config: cfg,
		tracer: otel.Tracer(observability.TracerName),
	}
}

// Backend implements Manager
func (m *S3Manager) Backend() string { return BackendS3 }

// Store uploads the files as a single archive
func (m *S3Manager) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if req == nil {
		return nil, fmt.Errorf("store request cannot be nil")
	}
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateFiles(req.Files); err != nil {
		return nil, err
	}

	key := m.key(req.Name)
	ctx, span := m.start(ctx, "PutObject", key)
	defer span.End()

	compressed, err := compressFiles(req.Files)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to compress files: %w", err))
	}
	hash, size := contentHash(req.Files)

	metadata := make(map[string]string, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		metadata[strings.ToLower(k)] = v
	}
	metadata[metaChecksum] = checksum(compressed)
	metadata[metaContentHash] = hash

	span.SetAttributes(attribute.Int("content.size", len(compressed)))
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/gzip"),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %v", ErrUploadFailed, err))
	}

	return &StoreResult{
		Key:            key,
		Location:       m.config.S3Bucket,
		Hash:           hash,
		Size:           size,
		CompressedSize: int64(len(compressed)),
	}, nil
}

// Retrieve downloads and unpacks the archive, verifying its checksum
func (m *S3Manager) Retrieve(ctx context.Context, name string) (*RetrieveResult, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	key := m.key(name)
	ctx, span := m.start(ctx, "GetObject", key)
	defer span.End()

	output, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fail(span, fmt.Errorf("%w: %s", ErrArtifactNotFound, name))
		}
		return nil, fail(span, fmt.Errorf("%w: %v", ErrDownloadFailed, err))
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to read S3 object: %w", err))
	}

	metadata := make(map[string]string, len(output.Metadata))
	for k, v := range output.Metadata {
		metadata[strings.ToLower(k)] = v
	}
	if want, ok := metadata[metaChecksum]; ok && m.config.EnableChecksum && want != checksum(data) {
		return nil, fail(span, fmt.Errorf("%w: %s", ErrChecksumMismatch, name))
	}
	delete(metadata, metaChecksum)
	delete(metadata, metaContentHash)

	files, err := decompressFiles(data)
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to unpack %s: %w", name, err))
	}
	hash, size := contentHash(files)

	return &RetrieveResult{
		Files:    files,
		Metadata: metadata,
		Hash:     hash,
		Size:     size,
	}, nil
}

// Delete removes the artifact object
func (m *S3Manager) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	key := m.key(name)
	ctx, span := m.start(ctx, "DeleteObject", key)
	defer span.End()

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fail(span, fmt.Errorf("failed to delete from S3: %w", err))
	}
	return nil
}

// Exists checks if the artifact object exists
func (m *S3Manager) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	key := m.key(name)
	ctx, span := m.start(ctx, "HeadObject", key)
	defer span.End()

	_, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fail(span, err)
	}
	return true, nil
}

// Close releases resources
func (m *S3Manager) Close() error {
	// S3 client doesn't need explicit closing
	return nil
}

// key builds the object key: {prefix}/{name}.tar.gz
func (m *S3Manager) key(name string) string {
	return path.Join(m.config.S3Prefix, name+".tar.gz")
}

func (m *S3Manager) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "S3."+op, trace.WithAttributes(
		attribute.String("s3.operation", op),
		attribute.String("s3.bucket", m.config.S3Bucket),
		attribute.String("s3.key", key),
	))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
