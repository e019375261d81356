// Package domain contains the editorial entities and the AppData document that aggregates them.
package domain

import "time"

// BookStatus tracks where a title sits in the publishing pipeline.
type BookStatus string

// Book pipeline states.
const (
	BookStatusIdea      BookStatus = "idea"
	BookStatusDrafting  BookStatus = "drafting"
	BookStatusEditing   BookStatus = "editing"
	BookStatusReady     BookStatus = "ready"
	BookStatusPublished BookStatus = "published"
)

// Book is a single title managed by the desk.
// PseudonymID, ImprintID and SeriesID are soft references: the parent may have been deleted.
type Book struct {
	ID              string     `json:"id" validate:"required"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle,omitempty"`
	PseudonymID     string     `json:"pseudonymId,omitempty"`
	ImprintID       string     `json:"imprintId,omitempty"`
	SeriesID        string     `json:"seriesId,omitempty"`
	SeriesOrder     float64    `json:"seriesOrder,omitempty"`
	Status          BookStatus `json:"status,omitempty"`
	Genre           string     `json:"genre,omitempty"`
	ISBN            string     `json:"isbn,omitempty"`
	ASIN            string     `json:"asin,omitempty"`
	WordCount       int        `json:"wordCount,omitempty"`
	TargetWordCount int        `json:"targetWordCount,omitempty"`
	PublishDate     string     `json:"publishDate,omitempty"` // yyyy-mm-dd as entered in the form
	Price           float64    `json:"price,omitempty"`
	Blurb           string     `json:"blurb,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	CreatedAt       time.Time  `json:"createdAt,omitzero"`
	UpdatedAt       time.Time  `json:"updatedAt,omitzero"`
}

// GetID implements Entity.
func (b Book) GetID() string { return b.ID }
