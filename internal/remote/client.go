// Package remote talks to the sync server that holds the shared copy of the desk document.
package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/inkwellpress/editorial-desk/internal/domain"
)

// DefaultTimeout bounds each request when the caller does not configure one.
const DefaultTimeout = 10 * time.Second

const dataPath = "/api/data"

var (
	// ErrNotConfigured is returned when the client has no server URL.
	ErrNotConfigured = errors.New("remote server not configured")
	// ErrStatus is returned for any non-2xx response.
	ErrStatus = errors.New("unexpected response status")
)

// FetchResult is the outcome of probing the server.
// Reachable=false covers network failures, timeouts, non-2xx responses and undecodable bodies.
// Reachable=true with nil Data means the server answered but holds no document.
type FetchResult struct {
	Data      *domain.AppData
	Reachable bool
}

// Client is a thin HTTP client for the sync server. It never caches and never retries:
// every call is exactly one request.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the server at baseURL. An empty baseURL yields a client
// that always reports the server as unreachable.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch retrieves the server's document. A null, blank or empty ({}) body means the server
// is reachable but holds nothing, reported as Reachable with nil Data.
func (c *Client) Fetch(ctx context.Context) FetchResult {
	body, err := c.doRequest(ctx, http.MethodGet, dataPath, nil)
	if err != nil {
		c.logger.Warn("Remote fetch failed", "url", c.baseURL, "error", err)
		return FetchResult{}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.logger.Debug("Remote holds no document", "url", c.baseURL)
		return FetchResult{Reachable: true}
	}

	var doc domain.AppData
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		c.logger.Warn("Remote document could not be decoded", "url", c.baseURL, "error", err)
		return FetchResult{}
	}
	if doc.IsEmpty() {
		c.logger.Debug("Remote document is empty", "url", c.baseURL)
		return FetchResult{Reachable: true}
	}
	return FetchResult{Data: doc.Normalize(), Reachable: true}
}

// Push replaces the server's document with doc. It reports whether the server accepted it.
func (c *Client) Push(ctx context.Context, doc *domain.AppData) bool {
	if doc == nil {
		c.logger.Warn("Refusing to push a nil document")
		return false
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		c.logger.Error("Failed to encode document for push", "error", err)
		return false
	}

	if _, err := c.doRequest(ctx, http.MethodPost, dataPath, payload); err != nil {
		c.logger.Warn("Remote push failed", "url", c.baseURL, "bytes", len(payload), "error", err)
		return false
	}

	c.logger.Info("Document pushed to server", "url", c.baseURL, "bytes", len(payload))
	return true
}

// doRequest executes a single request and returns the body of a 2xx response.
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("remote request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
