package backup

import (
	"archive/zip"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/inkwellpress/editorial-desk/internal/backup/stream"
	"github.com/inkwellpress/editorial-desk/internal/domain"
)

// ArchiveResult reports what an archive import restored.
type ArchiveResult struct {
	Manifest    *Manifest
	Document    *domain.AppData
	MediaSaved  int
	MediaFailed int
}

// ExportArchive writes a zip archive holding the manifest, the document and every media blob.
func (s *Service) ExportArchive(ctx context.Context, w io.Writer) (*Manifest, error) {
	doc := s.docs.GetData(ctx)

	var blobs map[string]string
	if s.media != nil {
		var err error
		blobs, err = s.media.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("read media: %w", err)
		}
	}

	manifest := &Manifest{
		Version:       FormatVersion,
		CreatedAt:     s.now().UTC(),
		BrandName:     doc.Settings.BrandName,
		Counts:        doc.Counts(),
		IncludesMedia: s.media != nil,
		MediaCount:    len(blobs),
	}

	zw := zip.NewWriter(w)

	if err := writeJSON(zw, manifestFile, manifest); err != nil {
		return nil, err
	}
	if err := writeJSON(zw, documentFile, doc); err != nil {
		return nil, err
	}

	if s.media != nil {
		mw, err := stream.NewWriter(zw, mediaFile)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", mediaFile, err)
		}
		for _, key := range slices.Sorted(maps.Keys(blobs)) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := mw.Write(mediaEntry{Key: key, DataURL: blobs[key]}); err != nil {
				return nil, fmt.Errorf("write media %q: %w", key, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}

	s.logger.Info("Archive exported", "counts", manifest.Counts, "media", manifest.MediaCount)
	return manifest, nil
}

// ImportArchive restores the document and media blobs from a zip archive.
// The document is saved before any blob; a blob that fails to save is logged and
// counted, and does not fail the import.
func (s *Service) ImportArchive(ctx context.Context, r io.ReaderAt, size int64) (*ArchiveResult, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}

	var manifest Manifest
	if err := readJSON(zr, manifestFile, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if !compatible(manifest.Version) {
		return nil, fmt.Errorf("%w: %q", ErrVersionMismatch, manifest.Version)
	}

	var doc domain.AppData
	if err := readJSON(zr, documentFile, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}
	for name, want := range manifest.Counts {
		if got := doc.Counts()[name]; got != want {
			return nil, fmt.Errorf("%w: manifest lists %d %s, document has %d", ErrCorruptedBackup, want, name, got)
		}
	}

	saved, err := s.restore(ctx, &doc, "archive")
	if err != nil {
		return nil, err
	}

	result := &ArchiveResult{Manifest: &manifest, Document: saved}
	if !manifest.IncludesMedia || s.media == nil {
		return result, nil
	}

	rc, err := stream.OpenFile(zr, mediaFile)
	if errors.Is(err, stream.ErrFileNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", mediaFile, err)
	}

	for entry, err := range stream.NewReader[mediaEntry](rc).All() {
		if err != nil {
			s.logger.Warn("Skipping unreadable media entry", "error", err)
			result.MediaFailed++
			continue
		}
		if err := s.media.Save(ctx, entry.Key, entry.DataURL); err != nil {
			s.logger.Warn("Media not restored", "key", entry.Key, "error", err)
			result.MediaFailed++
			continue
		}
		result.MediaSaved++
	}

	s.logger.Info("Archive imported", "media_saved", result.MediaSaved, "media_failed", result.MediaFailed)
	return result, nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := json.MarshalWrite(f, v, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func readJSON(zr *zip.Reader, name string, v any) error {
	rc, err := stream.OpenFile(zr, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	return json.UnmarshalRead(rc, v)
}
