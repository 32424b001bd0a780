package artifacts

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Manager handles storage and retrieval of build artifacts
type Manager interface {
	// Store saves the files of a build under req.Name, replacing any
	// previous artifact of that name.
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)

	// Retrieve loads the artifact stored under name
	Retrieve(ctx context.Context, name string) (*RetrieveResult, error)

	// Delete removes the artifact stored under name
	Delete(ctx context.Context, name string) error

	// Exists checks if an artifact exists
	Exists(ctx context.Context, name string) (bool, error)

	// Backend names the storage backend, e.g. for metrics labels
	Backend() string

	// Close releases resources
	Close() error
}

// File is one stored file, with a slash-separated relative path.
type File struct {
	Path    string
	Content []byte
}

// StoreRequest represents a request to store build artifacts
type StoreRequest struct {
	Name     string
	Files    []File
	Metadata map[string]string
}

// StoreResult represents the result of storing artifacts
type StoreResult struct {
	Key            string // object key or directory
	Location       string // bucket or root directory
	Hash           string
	Size           int64
	CompressedSize int64
}

// RetrieveResult represents the result of retrieving artifacts
type RetrieveResult struct {
	Files    []File
	Metadata map[string]string
	Hash     string
	Size     int64
}

// Backends
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
)

// Config holds artifact manager configuration
type Config struct {
	Backend string

	// Filesystem
	Dir string

	// S3
	S3Bucket       string
	S3Prefix       string
	S3Region       string
	S3Endpoint     string
	S3UsePathStyle bool
	S3AccessKey    string
	S3SecretKey    string

	EnableChecksum bool // Verify checksums on retrieval
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendFilesystem,
		Dir:            "weaver-out",
		S3Prefix:       "weaver/",
		S3Region:       "us-east-1",
		EnableChecksum: true,
	}
}

// Validate checks the configuration of the selected backend
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFilesystem:
		if c.Dir == "" {
			return fmt.Errorf("filesystem backend requires a directory")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 backend requires a bucket")
		}
		if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
			return fmt.Errorf("s3 access key and secret key must be set together")
		}
	default:
		return fmt.Errorf("unknown artifact backend %q", c.Backend)
	}
	return nil
}

// ValidateName checks that name is a single clean path segment
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func validateFiles(files []File) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		clean := path.Clean(f.Path)
		if f.Path == "" || clean != f.Path || path.IsAbs(f.Path) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("invalid file path %q", f.Path)
		}
		if seen[f.Path] {
			return fmt.Errorf("duplicate file path %q", f.Path)
		}
		seen[f.Path] = true
	}
	return nil
}
