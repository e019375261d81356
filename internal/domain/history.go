package domain

import "time"

// HistoryRecord is an append-only audit entry.
// Records are written by flows that audit themselves (import, bulk edits) and are never
// modified or removed through normal flows.
type HistoryRecord struct {
	ID        string    `json:"id" validate:"required"`
	BookID    string    `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// GetID implements Entity.
func (h HistoryRecord) GetID() string { return h.ID }
