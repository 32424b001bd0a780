package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// IndexFile records what a filesystem artifact holds. It lives next to the
// stored files.
const IndexFile = ".weaver-artifact.yaml"

type index struct {
	Hash     string            `yaml:"hash"`
	Size     int64             `yaml:"size"`
	Files    []string          `yaml:"files"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// FileSystemManager stores each artifact as a directory of plain files
type FileSystemManager struct {
	rootDir  string
	checksum bool
}

// NewFileSystemManager creates a manager rooted at cfg.Dir
func NewFileSystemManager(cfg *Config) (*FileSystemManager, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemManager{rootDir: cfg.Dir, checksum: cfg.EnableChecksum}, nil
}

// Backend implements Manager
func (m *FileSystemManager) Backend() string { return BackendFilesystem }

// Store writes the files into a staging directory and swaps it in place of
// any previous artifact.
func (m *FileSystemManager) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if req == nil {
		return nil, fmt.Errorf("store request cannot be nil")
	}
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateFiles(req.Files); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(m.rootDir, "."+req.Name+".tmp-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer os.RemoveAll(staging)

	hash, size := contentHash(req.Files)
	idx := index{Hash: hash, Size: size, Metadata: req.Metadata}
	for _, f := range req.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := filepath.Join(staging, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		if err := os.WriteFile(target, f.Content, 0644); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		idx.Files = append(idx.Files, f.Path)
	}

	data, err := yaml.Marshal(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, IndexFile), data, 0644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	dir := m.dir(req.Name)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &StoreResult{
		Key:      dir,
		Location: m.rootDir,
		Hash:     hash,
		Size:     size,
	}, nil
}

// Retrieve reads the artifact back and verifies its content hash
func (m *FileSystemManager) Retrieve(ctx context.Context, name string) (*RetrieveResult, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	dir := m.dir(name)

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	var idx index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index of %s: %w", name, err)
	}

	files := make([]File, 0, len(idx.Files))
	for _, p := range idx.Files {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
		}
		files = append(files, File{Path: p, Content: content})
	}
	if err := validateFiles(files); err != nil {
		return nil, err
	}

	hash, size := contentHash(files)
	if m.checksum && hash != idx.Hash {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, name)
	}

	metadata := idx.Metadata
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &RetrieveResult{Files: files, Metadata: metadata, Hash: hash, Size: size}, nil
}

// Delete removes the artifact directory
func (m *FileSystemManager) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	exists, err := m.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	return os.RemoveAll(m.dir(name))
}

// Exists checks for the artifact's index file
func (m *FileSystemManager) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(m.dir(name), IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Close releases resources
func (m *FileSystemManager) Close() error { return nil }

func (m *FileSystemManager) dir(name string) string {
	return filepath.Join(m.rootDir, name)
}
