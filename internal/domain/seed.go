package domain

// Seed returns the document a desk starts with when nothing has been saved yet,
// or when the saved copy can't be read.
func Seed() *AppData {
	return &AppData{
		Imprints: []Imprint{
			{ID: "imp-1", Name: "Main Imprint", Description: "Primary imprint for general fiction"},
			{ID: "imp-2", Name: "Romance Line", Description: "Imprint for romance titles"},
		},
		Pseudonyms: []Pseudonym{
			{ID: "ps-1", Name: "Default Author", Bio: "Author bio goes here"},
		},
		Series: []Series{
			{ID: "ser-1", Name: "Standalone", PseudonymID: "ps-1", Status: "ongoing"},
		},
		Books:    []Book{},
		Tasks:    []Task{},
		Sales:    []Sale{},
		History:  []HistoryRecord{},
		Settings: DefaultSettings(),
	}
}
