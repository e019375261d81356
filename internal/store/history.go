package store

import (
	"time"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/id"
)

// ActionImport is the history action recorded when a backup replaces the document.
const ActionImport = "import"

// LogAction returns a copy of doc with one HistoryRecord appended. It does not save:
// callers batch several changes and persist them with one SaveData.
func LogAction(bookID, bookTitle, action, details string, doc *domain.AppData) *domain.AppData {
	out := doc.Clone()
	if out == nil {
		out = domain.Seed()
	}
	out.History = append(out.History, domain.HistoryRecord{
		ID:        id.MustGenerate(id.PrefixHistory),
		BookID:    bookID,
		BookTitle: bookTitle,
		Action:    action,
		Timestamp: time.Now().UTC(),
		Details:   details,
	})
	return out
}
