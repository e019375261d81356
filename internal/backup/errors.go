// Package backup exports and imports the whole desk: the document as plain JSON, or the
// document plus media blobs as a zip archive.
package backup

import "errors"

var (
	// ErrInvalidManifest indicates the archive manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the archive format version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")

	// ErrCorruptedBackup indicates the archive contents do not match its manifest.
	ErrCorruptedBackup = errors.New("backup integrity check failed")
)
