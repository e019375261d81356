package domain

// Task is a to-do item, optionally attached to a book.
type Task struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	BookID      string `json:"bookId,omitempty"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Priority    string `json:"priority,omitempty"` // low, medium, high
	Status      string `json:"status,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

// GetID implements Entity.
func (t Task) GetID() string { return t.ID }
