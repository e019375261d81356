package domain

// Pseudonym is an author name books are published under.
// The author photo lives in the media side-store keyed by the pseudonym ID.
type Pseudonym struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name"`
	Bio     string   `json:"bio,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Email   string   `json:"email,omitempty"`
	Website string   `json:"website,omitempty"`
}

// GetID implements Entity.
func (p Pseudonym) GetID() string { return p.ID }
