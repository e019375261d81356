package domain

// Sale is one sales record for a book on a platform and date.
type Sale struct {
	ID       string  `json:"id" validate:"required"`
	BookID   string  `json:"bookId,omitempty"`
	Date     string  `json:"date,omitempty"`
	Platform string  `json:"platform,omitempty"`
	Units    int     `json:"units"`
	Revenue  float64 `json:"revenue"`
	Currency string  `json:"currency,omitempty"`
}

// GetID implements Entity.
func (s Sale) GetID() string { return s.ID }
