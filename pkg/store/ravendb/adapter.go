package ravendb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nimburion/ycsb-ravendb/pkg/observability/logger"
	"github.com/nimburion/ycsb-ravendb/pkg/store"
)

// ErrNotFound is returned by GetDocument when no document exists under the
// requested identifier.
var ErrNotFound = errors.New("ravendb: document not found")

// Adapter provides RavenDB 3.5 connectivity over its HTTP API. One adapter
// owns one session against a single server URL; it is safe for use by a
// single goroutine plus HealthCheck callers.
type Adapter struct {
	baseURL  *url.URL
	database string
	client   *http.Client
	logger   logger.Logger

	mu     sync.RWMutex
	closed bool
}

// Config holds RavenDB adapter configuration.
type Config struct {
	URL              string
	Database         string
	MaxConns         int
	OperationTimeout time.Duration
}

// DatabaseDocument describes a logical database for CreateDatabase, matching
// the shape the RavenDB admin endpoint expects.
type DatabaseDocument struct {
	ID       string            `json:"Id"`
	Settings map[string]string `json:"Settings"`
}

// NewAdapter creates a RavenDB adapter and verifies connectivity with a
// build-version probe.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ravendb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("ravendb database is required")
	}
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid ravendb URL %q: %w", cfg.URL, err)
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConns,
		MaxIdleConnsPerHost: cfg.MaxConns,
		MaxConnsPerHost:     cfg.MaxConns,
		IdleConnTimeout:     90 * time.Second,
	}

	adapter := &Adapter{
		baseURL:  base,
		database: cfg.Database,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.OperationTimeout,
		},
		logger: log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := adapter.Ping(ctx); err != nil {
		adapter.Close()
		return nil, fmt.Errorf("failed to ping ravendb: %w", err)
	}

	log.Info("RavenDB connection established",
		"url", cfg.URL,
		"database", cfg.Database,
		"operation_timeout", cfg.OperationTimeout,
	)
	return adapter, nil
}

// Database returns the logical database name this adapter addresses.
func (a *Adapter) Database() string {
	return a.database
}

// Ping verifies the server answers on its build-version endpoint.
func (a *Adapter) Ping(ctx context.Context) error {
	resp, err := a.request(ctx, http.MethodGet, "/build/version", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("ravendb ping failed with status %d: %s", resp.StatusCode, readError(resp.Body))
	}
	return nil
}

// HealthCheck verifies the server is reachable within a short deadline.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("RavenDB health check failed", "error", err)
		return fmt.Errorf("ravendb health check failed: %w", err)
	}
	return nil
}

// DatabaseNames lists up to pageSize logical database names on the server.
func (a *Adapter) DatabaseNames(ctx context.Context, pageSize int) ([]string, error) {
	path := fmt.Sprintf("/databases?pageSize=%d", pageSize)
	resp, err := a.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to list databases: status %d: %s", resp.StatusCode, readError(resp.Body))
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("failed to decode database names: %w", err)
	}
	return names, nil
}

// CreateDatabase creates a logical database on the server. A conflict
// response is treated as success: another instance won the check-then-create
// race and the database exists either way.
func (a *Adapter) CreateDatabase(ctx context.Context, doc DatabaseDocument) error {
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("database id is required")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal database document: %w", err)
	}

	path := "/admin/databases/" + url.PathEscape(doc.ID)
	resp, err := a.request(ctx, http.MethodPut, path, payload, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to create database %q: status %d: %s", doc.ID, resp.StatusCode, readError(resp.Body))
	}
	return nil
}

// GetDocument fetches the document stored under id, or ErrNotFound.
func (a *Adapter) GetDocument(ctx context.Context, id string) (*Document, error) {
	resp, err := a.request(ctx, http.MethodGet, a.docPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to get document %q: status %d: %s", id, resp.StatusCode, readError(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %q: %w", id, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %q: %w", id, err)
	}
	return &doc, nil
}

// PutDocument stores the document under id. A nil etag writes
// unconditionally, replacing any existing document; a non-nil etag is sent
// as an If-Match precondition.
func (a *Adapter) PutDocument(ctx context.Context, id string, doc *Document, etag *string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", id, err)
	}

	var headers http.Header
	if etag != nil {
		headers = http.Header{"If-Match": []string{*etag}}
	}

	resp, err := a.request(ctx, http.MethodPut, a.docPath(id), payload, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to put document %q: status %d: %s", id, resp.StatusCode, readError(resp.Body))
	}
	return nil
}

// DeleteDocument removes the document stored under id. A nil etag deletes
// unconditionally. Deleting an absent document is not an error.
func (a *Adapter) DeleteDocument(ctx context.Context, id string, etag *string) error {
	var headers http.Header
	if etag != nil {
		headers = http.Header{"If-Match": []string{*etag}}
	}

	resp, err := a.request(ctx, http.MethodDelete, a.docPath(id), nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to delete document %q: status %d: %s", id, resp.StatusCode, readError(resp.Body))
	}
	return nil
}

// Close releases idle HTTP connections. The adapter must not be used after
// Close returns.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	if transport, ok := a.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

func (a *Adapter) docPath(id string) string {
	return fmt.Sprintf("/databases/%s/docs/%s", url.PathEscape(a.database), url.PathEscape(id))
}

func (a *Adapter) request(ctx context.Context, method, path string, body []byte, headers http.Header) (*http.Response, error) {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("ravendb adapter is closed")
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	target := a.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, values := range headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ravendb request failed: %w", err)
	}
	return resp, nil
}

func readError(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 2048))
	return strings.TrimSpace(string(body))
}

var _ store.Adapter = (*Adapter)(nil)
