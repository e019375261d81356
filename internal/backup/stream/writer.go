// Package stream reads and writes JSONL entries inside zip archives.
package stream

import (
	"archive/zip"
	"encoding/json/v2"
	"io"
)

// Writer appends JSON lines to one file of a zip archive.
type Writer struct {
	w     io.Writer
	count int
}

// NewWriter creates a JSONL writer for path within the archive. The previous file
// created on zw must not be written to afterwards.
func NewWriter(zw *zip.Writer, path string) (*Writer, error) {
	w, err := zw.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w}, nil
}

// Write encodes v as a single line.
func (w *Writer) Write(v any) error {
	if err := json.MarshalWrite(w.w, v); err != nil {
		return err
	}
	if _, err := w.w.Write([]byte{'\n'}); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns entries written so far.
func (w *Writer) Count() int {
	return w.count
}
