package domain

// Series groups books that are meant to be read in order.
type Series struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name"`
	PseudonymID  string `json:"pseudonymId,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`       // ongoing, complete, paused
	PlannedBooks int    `json:"plannedBooks,omitempty"` // 0 if open-ended
}

// GetID implements Entity.
func (s Series) GetID() string { return s.ID }
