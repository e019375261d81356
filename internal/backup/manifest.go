package backup

import (
	"strings"
	"time"
)

// FormatVersion is the archive format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Archive entry names.
const (
	manifestFile = "manifest.json"
	documentFile = "document.json"
	mediaFile    = "media.jsonl"
)

// Manifest describes archive contents.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	BrandName string    `json:"brand_name,omitempty"`

	// Counts holds the element count of every document collection.
	Counts map[string]int `json:"counts"`

	IncludesMedia bool `json:"includes_media"`
	MediaCount    int  `json:"media_count,omitempty"`
}

// mediaEntry is one line of media.jsonl.
type mediaEntry struct {
	Key     string `json:"key"`
	DataURL string `json:"dataUrl"`
}

// compatible reports whether an archive written as version v can be read.
func compatible(v string) bool {
	major, _, _ := strings.Cut(v, ".")
	want, _, _ := strings.Cut(FormatVersion, ".")
	return major != "" && major == want
}
