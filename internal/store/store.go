// Package store owns the local copy of the desk document and is the only writer to its slot.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inkwellpress/editorial-desk/internal/domain"
)

// Alerter surfaces blocking, user-visible warnings.
// Store uses this to report failed saves without depending on how the warning is shown.
type Alerter interface {
	Alert(message string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(message string)

// Alert implements Alerter.
func (f AlerterFunc) Alert(message string) { f(message) }

// NoopAlerter drops every alert.
type NoopAlerter struct{}

// Alert implements Alerter.Alert as a no-op.
func (NoopAlerter) Alert(string) {}

// Store reads and writes the whole AppData document against a Slot.
type Store struct {
	slot   Slot
	logger *slog.Logger

	// Alerter for failed saves.
	// Set via SetAlerter after creation; the CLI wires it to stderr.
	alerter Alerter

	// mu serializes read-modify-write cycles of the collection helpers.
	mu sync.Mutex

	subs subscribers

	Imprints   *Collection[domain.Imprint]
	Pseudonyms *Collection[domain.Pseudonym]
	Series     *Collection[domain.Series]
	Books      *Collection[domain.Book]
	Tasks      *Collection[domain.Task]
	Sales      *Collection[domain.Sale]
	History    *Collection[domain.HistoryRecord]
}

// New creates a Store over slot.
func New(slot Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		slot:    slot,
		logger:  logger,
		alerter: NoopAlerter{},
	}

	s.Imprints = newCollection(s, domain.CollectionImprints, func(d *domain.AppData) *[]domain.Imprint { return &d.Imprints })
	s.Pseudonyms = newCollection(s, domain.CollectionPseudonyms, func(d *domain.AppData) *[]domain.Pseudonym { return &d.Pseudonyms })
	s.Series = newCollection(s, domain.CollectionSeries, func(d *domain.AppData) *[]domain.Series { return &d.Series })
	s.Books = newCollection(s, domain.CollectionBooks, func(d *domain.AppData) *[]domain.Book { return &d.Books })
	s.Tasks = newCollection(s, domain.CollectionTasks, func(d *domain.AppData) *[]domain.Task { return &d.Tasks })
	s.Sales = newCollection(s, domain.CollectionSales, func(d *domain.AppData) *[]domain.Sale { return &d.Sales })
	s.History = newCollection(s, domain.CollectionHistory, func(d *domain.AppData) *[]domain.HistoryRecord { return &d.History })

	return s
}

// SetAlerter sets where failed saves are reported.
func (s *Store) SetAlerter(a Alerter) {
	if a == nil {
		a = NoopAlerter{}
	}
	s.alerter = a
}

// Close closes the underlying slot.
func (s *Store) Close() error {
	s.logger.Info("Closing document slot")
	return s.slot.Close()
}

// GetData returns the stored document. A missing or unreadable document is logged and
// replaced by the seed document; GetData never fails.
func (s *Store) GetData(ctx context.Context) *domain.AppData {
	raw, err := s.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		s.logger.Debug("No local document, using seed")
		return domain.Seed()
	}
	if err != nil {
		s.logger.Warn("Failed to read local document, using seed", "error", err)
		return domain.Seed()
	}

	var doc domain.AppData
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("Local document is corrupt, using seed", "error", err, "bytes", len(raw))
		return domain.Seed()
	}
	return doc.Normalize()
}

// SaveData persists the full document in one write. On failure the previous document stays
// in the slot, the user is alerted, and the returned error wraps ErrQuotaExceeded or
// ErrWriteFailed.
func (s *Store) SaveData(ctx context.Context, doc *domain.AppData) error {
	s.mu.Lock()
	err := s.write(ctx, doc)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(Change{Op: OpReplace}, doc)
	return nil
}

// write must be called with mu held.
func (s *Store) write(ctx context.Context, doc *domain.AppData) error {
	if doc == nil {
		return ErrInvalidInput.WithCause(errors.New("document is nil"))
	}

	data, err := json.Marshal(doc.Clone())
	if err != nil {
		return s.saveFailed(ErrWriteFailed.WithCause(fmt.Errorf("marshal document: %w", err)))
	}

	if err := s.slot.Write(ctx, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return s.saveFailed(err)
		}
		return s.saveFailed(ErrWriteFailed.WithCause(err))
	}

	s.logger.Debug("Document saved", "bytes", len(data))
	return nil
}

func (s *Store) saveFailed(err error) error {
	s.logger.Error("Failed to save document", "error", err)

	msg := "Your changes could not be saved locally."
	if errors.Is(err, ErrQuotaExceeded) {
		msg = "Local storage is full: your latest changes were not saved. Remove large images or export a backup."
	}
	s.alerter.Alert(msg)
	return err
}
