package domain

// Imprint is a publishing brand books are released under.
// The logo lives in the media side-store keyed by the imprint ID.
type Imprint struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Color       string `json:"color,omitempty"`
}

// GetID implements Entity.
func (i Imprint) GetID() string { return i.ID }
