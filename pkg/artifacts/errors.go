package artifacts

import "errors"

var (
	// ErrArtifactNotFound is returned when an artifact is not found
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrUploadFailed is returned when upload fails
	ErrUploadFailed = errors.New("upload failed")

	// ErrDownloadFailed is returned when download fails
	ErrDownloadFailed = errors.New("download failed")

	// ErrChecksumMismatch is returned when checksums don't match
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrInvalidName is returned for artifact names that are not a single
	// clean path segment
	ErrInvalidName = errors.New("invalid artifact name")
)
