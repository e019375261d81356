package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inkwellpress/editorial-desk/internal/store"
)

// singletonID is the fixed primary key of the only app_state row.
const singletonID = 1

// Document is the stored singleton as the server sees it: opaque JSON plus its write time.
type Document struct {
	Data      []byte
	UpdatedAt time.Time
}

// DocumentInfo describes the singleton without loading it.
type DocumentInfo struct {
	Exists    bool
	UpdatedAt time.Time
	SizeBytes int64
}

// GetDocument returns the stored document.
// Returns store.ErrNotFound if nothing has been pushed yet.
func (s *Store) GetDocument(ctx context.Context) (*Document, error) {
	var (
		data      string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, updated_at FROM app_state WHERE id = ?`, singletonID).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select app_state: %w", err)
	}

	ts, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &Document{Data: []byte(data), UpdatedAt: ts}, nil
}

// PutDocument replaces the singleton with data in full and returns what was stored.
// There is no version check: the last write wins.
func (s *Store) PutDocument(ctx context.Context, data []byte) (*Document, error) {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO app_state (id, data, updated_at) VALUES (?, ?, ?)`,
		singletonID, string(data), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("upsert app_state: %w", err)
	}

	s.logger.Debug("Document replaced", "bytes", len(data))
	return &Document{Data: data, UpdatedAt: now}, nil
}

// GetDocumentInfo reports whether a document exists, when it was written and its size.
func (s *Store) GetDocumentInfo(ctx context.Context) (*DocumentInfo, error) {
	var (
		updatedAt string
		size      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at, length(CAST(data AS BLOB)) FROM app_state WHERE id = ?`, singletonID).Scan(&updatedAt, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return &DocumentInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select app_state info: %w", err)
	}

	ts, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &DocumentInfo{Exists: true, UpdatedAt: ts, SizeBytes: size}, nil
}
