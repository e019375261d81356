package domain

import "slices"

// Entity is implemented by every element of an AppData collection.
type Entity interface {
	GetID() string
}

// Collection names as they appear in the serialized document.
const (
	CollectionImprints   = "imprints"
	CollectionPseudonyms = "pseudonyms"
	CollectionSeries     = "series"
	CollectionBooks      = "books"
	CollectionTasks      = "tasks"
	CollectionSales      = "sales"
	CollectionHistory    = "history"
)

// AppData is the whole desk document. It is always persisted and replaced as a unit.
type AppData struct {
	Imprints   []Imprint       `json:"imprints" validate:"unique=ID,dive"`
	Pseudonyms []Pseudonym     `json:"pseudonyms" validate:"unique=ID,dive"`
	Series     []Series        `json:"series" validate:"unique=ID,dive"`
	Books      []Book          `json:"books" validate:"unique=ID,dive"`
	Tasks      []Task          `json:"tasks" validate:"unique=ID,dive"`
	Sales      []Sale          `json:"sales" validate:"unique=ID,dive"`
	History    []HistoryRecord `json:"history" validate:"unique=ID,dive"`
	Settings   Settings        `json:"settings"`
}

// Normalize replaces nil collections with empty ones so a freshly built document and
// one decoded from JSON compare equal. It returns d for chaining.
func (d *AppData) Normalize() *AppData {
	if d.Imprints == nil {
		d.Imprints = []Imprint{}
	}
	if d.Pseudonyms == nil {
		d.Pseudonyms = []Pseudonym{}
	}
	if d.Series == nil {
		d.Series = []Series{}
	}
	if d.Books == nil {
		d.Books = []Book{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Sales == nil {
		d.Sales = []Sale{}
	}
	if d.History == nil {
		d.History = []HistoryRecord{}
	}
	return d
}

// Clone returns a deep copy of the document.
func (d *AppData) Clone() *AppData {
	if d == nil {
		return nil
	}
	out := &AppData{
		Imprints:   slices.Clone(d.Imprints),
		Pseudonyms: slices.Clone(d.Pseudonyms),
		Series:     slices.Clone(d.Series),
		Books:      slices.Clone(d.Books),
		Tasks:      slices.Clone(d.Tasks),
		Sales:      slices.Clone(d.Sales),
		History:    slices.Clone(d.History),
		Settings:   d.Settings,
	}
	for i := range out.Pseudonyms {
		out.Pseudonyms[i].Genres = slices.Clone(out.Pseudonyms[i].Genres)
	}
	for i := range out.Books {
		out.Books[i].Tags = slices.Clone(out.Books[i].Tags)
	}
	return out.Normalize()
}

// IsEmpty reports whether the document holds no entities and no settings, as a bare {}
// does. Such a document carries nothing worth treating as authoritative.
func (d *AppData) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, n := range d.Counts() {
		if n > 0 {
			return false
		}
	}
	return d.Settings == Settings{}
}

// Counts returns the number of elements per collection, keyed by collection name.
func (d *AppData) Counts() map[string]int {
	return map[string]int{
		CollectionImprints:   len(d.Imprints),
		CollectionPseudonyms: len(d.Pseudonyms),
		CollectionSeries:     len(d.Series),
		CollectionBooks:      len(d.Books),
		CollectionTasks:      len(d.Tasks),
		CollectionSales:      len(d.Sales),
		CollectionHistory:    len(d.History),
	}
}
