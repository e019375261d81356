package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/http/response"
	"github.com/inkwellpress/editorial-desk/internal/sse"
	"github.com/inkwellpress/editorial-desk/internal/store/sqlite"
)

type testServer struct {
	*Server
	docs    *sqlite.Store
	manager *sse.Manager
	api     humatest.TestAPI
}

// setupTestServer creates a server over a temp SQLite database with a running SSE manager.
func setupTestServer(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	docs, err := sqlite.Open(filepath.Join(t.TempDir(), "remote.sqlite"), logger)
	require.NoError(t, err)

	manager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	srv := NewServer(docs, manager, sse.NewHandler(manager, logger, 0), cfg, logger)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		_ = docs.Close()
	})

	return &testServer{
		Server:  srv,
		docs:    docs,
		manager: manager,
		api:     humatest.Wrap(t, srv.api),
	}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func seedBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(domain.Seed())
	require.NoError(t, err)
	return body
}

func TestGetData_NullBeforeFirstPush(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{})

	w := doRequest(t, ts, http.MethodGet, "/api/data", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestPostThenGet_ReturnsIdenticalBytes(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{})

	// Unknown fields and formatting are kept as sent.
	body := []byte(`{"imprints":[{"id":"imp-9","name":"Nine"}],"books":[],"futureField":{"x":1}}`)

	w := doRequest(t, ts, http.MethodPost, "/api/data", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = doRequest(t, ts, http.MethodGet, "/api/data", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(body), w.Body.String())
}

func TestPostData_LastWriteWins(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{})

	require.Equal(t, http.StatusOK, doRequest(t, ts, http.MethodPost, "/api/data", seedBody(t)).Code)
	second := []byte(`{"books":[{"id":"b-1","title":"Second"}]}`)
	require.Equal(t, http.StatusOK, doRequest(t, ts, http.MethodPost, "/api/data", second).Code)

	w := doRequest(t, ts, http.MethodGet, "/api/data", nil)
	assert.Equal(t, string(second), w.Body.String())
}

func TestPostData_RejectsInvalidBodies(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{})

	tests := map[string]string{
		"empty":        ``,
		"array":        `[]`,
		"null":         `null`,
		"string":       `"hello"`,
		"malformed":    `{"books":`,
		"wrong type":   `{"books":"none"}`,
		"missing id":   `{"books":[{"title":"No id"}]}`,
		"duplicate id": `{"tasks":[{"id":"t-1"},{"id":"t-1"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, ts, http.MethodPost, "/api/data", []byte(body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}

	// Nothing was stored.
	w := doRequest(t, ts, http.MethodGet, "/api/data", nil)
	assert.Equal(t, "null", w.Body.String())
}

func TestPostData_BodyTooLarge(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{MaxBodyBytes: 64})

	body := []byte(`{"books":[{"id":"b-1","title":"` + strings.Repeat("x", 128) + `"}]}`)
	w := doRequest(t, ts, http.MethodPost, "/api/data", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestPostData_EmitsDocumentReplaced(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{})

	client, err := ts.manager.Connect()
	require.NoError(t, err)
	defer ts.manager.Disconnect(client.ID)

	body := seedBody(t)
	require.Equal(t, http.StatusOK, doRequest(t, ts, http.MethodPost, "/api/data", body).Code)

	select {
	case ev := <-client.EventChan:
		assert.Equal(t, sse.EventDocumentReplaced, ev.Type)
		data, ok := ev.Data.(sse.DocumentReplacedEventData)
		require.True(t, ok)
		assert.Equal(t, int64(len(body)), data.SizeBytes)
		assert.False(t, data.UpdatedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no document.replaced event")
	}
}

func TestPostData_RateLimitedPerIP(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{PushPerMinute: 1})
	body := seedBody(t)

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/data", bytes.NewReader(body))
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, post("10.0.0.1").Code)

	w := post("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// Other clients and reads are unaffected.
	assert.Equal(t, http.StatusOK, post("10.0.0.2").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, ts, http.MethodGet, "/api/data", nil).Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	ts := setupTestServer(t, config.ServerConfig{CORSOrigins: []string{"https://desk.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/data", nil)
	req.Header.Set("Origin", "https://desk.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "https://desk.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	w = httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) GetDocument(context.Context) (*sqlite.Document, error) { return nil, f.err }
func (f failingStore) PutDocument(context.Context, []byte) (*sqlite.Document, error) {
	return nil, f.err
}
func (f failingStore) GetDocumentInfo(context.Context) (*sqlite.DocumentInfo, error) {
	return nil, f.err
}
func (f failingStore) Ping(context.Context) error { return f.err }

func TestStorageFailure_Returns500(t *testing.T) {
	srv := NewServer(failingStore{err: errors.New("disk I/O error")}, nil, nil, config.ServerConfig{}, nil)
	t.Cleanup(srv.Close)

	w := doRequest(t, srv, http.MethodGet, "/api/data", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "disk I/O error")

	w = doRequest(t, srv, http.MethodPost, "/api/data", seedBody(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Error, "disk I/O error")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:1", "198.51.100.2"},
		{"remote addr", nil, "192.0.2.4:4242", "192.0.2.4"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:4242", "2001:db8::1"},
		{"no port", nil, "192.0.2.4", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
