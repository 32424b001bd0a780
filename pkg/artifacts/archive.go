package artifacts

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"sort"
)

// contentHash hashes files in path order, so it does not depend on the
// order they were given in.
func contentHash(files []File) (string, int64) {
	sorted := append([]File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	hasher := sha256.New()
	var size int64
	for _, f := range sorted {
		hasher.Write([]byte(f.Path))
		hasher.Write([]byte{0})
		hasher.Write(f.Content)
		hasher.Write([]byte{0})
		size += int64(len(f.Content))
	}
	return hex.EncodeToString(hasher.Sum(nil)), size
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// compressFiles packs files into a tar.gz archive
func compressFiles(files []File) ([]byte, error) {
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for _, file := range files {
		header := &tar.Header{
			Name:     file.Path,
			Mode:     0644,
			Size:     int64(len(file.Content)),
			Typeflag: tar.TypeReg,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, err
		}
		if _, err := tarWriter.Write(file.Content); err != nil {
			return nil, err
		}
	}

	// Close writers to flush
	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressFiles unpacks a tar.gz archive
func decompressFiles(data []byte) ([]File, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	var files []File
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		content, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: header.Name, Content: content})
	}

	if err := validateFiles(files); err != nil {
		return nil, err
	}
	return files, nil
}
