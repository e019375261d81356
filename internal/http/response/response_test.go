package response

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkwellpress/editorial-desk/internal/errors"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestSuccess_NilDataIsBareSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, nil, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestSuccess_WithData(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]any{"exists": true}, discardLogger())

	result := decode(t, w)
	assert.True(t, result.Success)
	dataMap, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, dataMap["exists"])
}

func TestJSON_ErrorStatusIsNotSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNotFound, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success, "Success should be false for status >= 400")
}

func TestRaw(t *testing.T) {
	w := httptest.NewRecorder()
	body := []byte(`{"books":[],"unknown":{"kept":true}}`)

	Raw(w, body, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, body, w.Body.Bytes())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		msg    string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid input", nil) }, http.StatusBadRequest, "invalid input"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "resource not found", nil) }, http.StatusNotFound, "resource not found"},
		{"too large", func(w http.ResponseWriter) { PayloadTooLarge(w, "body too large", nil) }, http.StatusRequestEntityTooLarge, "body too large"},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "12", nil) }, http.StatusTooManyRequests, "too many requests"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "internal server error", nil) }, http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			result := decode(t, w)
			assert.False(t, result.Success)
			assert.Nil(t, result.Data)
			assert.Equal(t, tt.msg, result.Error)
		})
	}
}

func TestTooManyRequests_RetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequests(w, "30", nil)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"store error", fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound, "resource not found"},
		{"domain error", domainerrors.Validation("document must be a JSON object"), http.StatusBadRequest, "document must be a JSON object"},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discardLogger())

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decode(t, w).Error)
		})
	}
}

func TestEnvelope_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(Envelope{Success: false, Error: "boom"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(data))
}
