package backup

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	domainerrors "github.com/inkwellpress/editorial-desk/internal/errors"
	"github.com/inkwellpress/editorial-desk/internal/store"
	"github.com/inkwellpress/editorial-desk/internal/validation"
)

// DocumentStore is the local persistence backups read from and restore into.
type DocumentStore interface {
	GetData(ctx context.Context) *domain.AppData
	SaveData(ctx context.Context, doc *domain.AppData) error
}

// MediaStore is the blob store archives include. *media.Store implements it.
type MediaStore interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, key, dataURL string) error
}

// Service exports and imports the desk.
type Service struct {
	docs      DocumentStore
	media     MediaStore
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a backup Service. media may be nil, in which case archives carry
// only the document.
func NewService(docs DocumentStore, media MediaStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		docs:      docs,
		media:     media,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Export writes the local document to w as indented JSON.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	doc := s.docs.GetData(ctx)
	if err := json.MarshalWrite(w, doc, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	s.logger.Info("Document exported", "counts", doc.Counts())
	return nil
}

// Import replaces the local document with the one read from r.
// The document is validated, stamped with an import history record and saved in a single write.
func (s *Service) Import(ctx context.Context, r io.Reader) (*domain.AppData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, domainerrors.Validation("import must be a JSON object")
	}

	var doc domain.AppData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domainerrors.Validationf("import is not a valid document: %v", err)
	}
	return s.restore(ctx, &doc, "file")
}

// restore validates doc, appends the import record and saves it.
func (s *Service) restore(ctx context.Context, doc *domain.AppData, origin string) (*domain.AppData, error) {
	doc.Normalize()
	if err := s.validator.Validate(doc); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("imported from %s: %d books, %d pseudonyms, %d imprints",
		origin, len(doc.Books), len(doc.Pseudonyms), len(doc.Imprints))
	doc = store.LogAction("", "", store.ActionImport, details, doc)

	if err := s.docs.SaveData(ctx, doc); err != nil {
		return nil, fmt.Errorf("save imported document: %w", err)
	}

	s.logger.Info("Document imported", "origin", origin, "counts", doc.Counts())
	return doc, nil
}
