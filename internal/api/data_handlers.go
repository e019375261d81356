package api

import (
	"bytes"
	"encoding/json/v2"
	"errors"
	"io"
	"net/http"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	domainerrors "github.com/inkwellpress/editorial-desk/internal/errors"
	"github.com/inkwellpress/editorial-desk/internal/http/response"
	"github.com/inkwellpress/editorial-desk/internal/sse"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

var nullBody = []byte("null")

// handleGetData returns the stored document verbatim, or null before the first push.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.GetDocument(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		response.Raw(w, nullBody, s.logger)
		return
	}
	if err != nil {
		s.logger.Error("Failed to read document", "error", err)
		response.InternalError(w, err.Error(), s.logger)
		return
	}

	response.Raw(w, doc.Data, s.logger)
}

// handlePostData replaces the stored document with the request body.
// The body is stored as sent, so fields unknown to this server survive the round trip.
func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.logger.Warn("Document rejected: body too large", "limit", tooLarge.Limit)
			response.PayloadTooLarge(w, "document exceeds the size limit", s.logger)
			return
		}
		response.BadRequest(w, "failed to read request body", s.logger)
		return
	}

	if err := s.validateDocument(body); err != nil {
		s.logger.Debug("Document rejected", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	doc, err := s.docs.PutDocument(r.Context(), body)
	if err != nil {
		s.logger.Error("Failed to store document", "error", err, "bytes", len(body))
		response.InternalError(w, err.Error(), s.logger)
		return
	}

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewDocumentReplacedEvent(doc.UpdatedAt, int64(len(doc.Data))))
	}

	response.Success(w, nil, s.logger)
}

// validateDocument checks that body is a JSON object shaped like the desk document.
func (s *Server) validateDocument(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domainerrors.Validation("document must be a JSON object")
	}

	var doc domain.AppData
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return domainerrors.Validationf("document is not valid JSON: %v", err)
	}
	return s.validator.Validate(&doc)
}
