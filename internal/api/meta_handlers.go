package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerMetaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDocumentMeta",
		Method:      http.MethodGet,
		Path:        "/api/meta",
		Summary:     "Document metadata",
		Description: "Reports whether a document is stored, when it was last replaced and its size, without sending it",
		Tags:        []string{"Data"},
	}, s.handleGetMeta)
}

// MetaResponse describes the stored document.
type MetaResponse struct {
	Exists    bool      `json:"exists" doc:"Whether a document has been pushed"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" doc:"Time of the last successful push"`
	SizeBytes int64     `json:"sizeBytes" doc:"Size of the stored document in bytes"`
}

// MetaOutput wraps the metadata response for Huma.
type MetaOutput struct {
	Body MetaResponse
}

func (s *Server) handleGetMeta(ctx context.Context, _ *struct{}) (*MetaOutput, error) {
	info, err := s.docs.GetDocumentInfo(ctx)
	if err != nil {
		s.logger.Error("Failed to read document info", "error", err)
		return nil, huma.Error500InternalServerError("failed to read document info", err)
	}

	return &MetaOutput{
		Body: MetaResponse{
			Exists:    info.Exists,
			UpdatedAt: info.UpdatedAt,
			SizeBytes: info.SizeBytes,
		},
	}, nil
}
