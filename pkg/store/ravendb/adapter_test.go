package ravendb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nimburion/ycsb-ravendb/pkg/observability/logger"
)

// testServer fakes the subset of the RavenDB 3.5 HTTP API the adapter uses.
type testServer struct {
	*httptest.Server
	docs map[string]string // raw JSON bodies by document id

	listCalls   int
	createCalls int
	databases   []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		docs:      make(map[string]string),
		databases: []string{"system"},
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.handle))
	t.Cleanup(ts.Server.Close)
	return ts
}

func (ts *testServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/build/version":
		w.Write([]byte(`{"ProductVersion":"3.5"}`))

	case r.URL.Path == "/databases" && r.Method == http.MethodGet:
		ts.listCalls++
		json.NewEncoder(w).Encode(ts.databases)

	case strings.HasPrefix(r.URL.Path, "/admin/databases/") && r.Method == http.MethodPut:
		ts.createCalls++
		name := strings.TrimPrefix(r.URL.Path, "/admin/databases/")
		for _, existing := range ts.databases {
			if strings.EqualFold(existing, name) {
				w.WriteHeader(http.StatusConflict)
				return
			}
		}
		ts.databases = append(ts.databases, name)
		w.WriteHeader(http.StatusCreated)

	case strings.HasPrefix(r.URL.Path, "/databases/YCSB/docs/"):
		id := strings.TrimPrefix(r.URL.Path, "/databases/YCSB/docs/")
		switch r.Method {
		case http.MethodGet:
			body, ok := ts.docs[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(body))
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			ts.docs[id] = string(body)
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			if _, ok := ts.docs[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(ts.docs, id)
			w.WriteHeader(http.StatusNoContent)
		}

	default:
		http.NotFound(w, r)
	}
}

func testAdapter(t *testing.T, ts *testServer) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(Config{
		URL:              ts.URL,
		Database:         "YCSB",
		OperationTimeout: time.Second,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("NewAdapter returned error: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func TestNewAdapterValidation(t *testing.T) {
	if _, err := NewAdapter(Config{Database: "YCSB"}, logger.Nop()); err == nil {
		t.Error("NewAdapter accepted empty URL")
	}
	if _, err := NewAdapter(Config{URL: "http://localhost:10301"}, logger.Nop()); err == nil {
		t.Error("NewAdapter accepted empty database")
	}
}

func TestNewAdapterPingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewAdapter(Config{URL: srv.URL, Database: "YCSB", OperationTimeout: time.Second}, logger.Nop())
	if err == nil {
		t.Fatal("expected error when ping fails")
	}
}

func TestDatabaseNames(t *testing.T) {
	ts := newTestServer(t)
	ts.databases = []string{"system", "Orders"}
	adapter := testAdapter(t, ts)

	names, err := adapter.DatabaseNames(context.Background(), 1024)
	if err != nil {
		t.Fatalf("DatabaseNames returned error: %v", err)
	}
	if len(names) != 2 || names[1] != "Orders" {
		t.Errorf("names = %v", names)
	}
}

func TestCreateDatabase(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)

	err := adapter.CreateDatabase(context.Background(), DatabaseDocument{
		ID:       "YCSB",
		Settings: map[string]string{"Raven/StorageEngine": "voron"},
	})
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}
	if ts.createCalls != 1 {
		t.Errorf("create calls = %d", ts.createCalls)
	}
}

func TestCreateDatabaseConflictIsSuccess(t *testing.T) {
	ts := newTestServer(t)
	ts.databases = append(ts.databases, "YCSB")
	adapter := testAdapter(t, ts)

	if err := adapter.CreateDatabase(context.Background(), DatabaseDocument{ID: "YCSB"}); err != nil {
		t.Errorf("CreateDatabase on existing database returned error: %v", err)
	}
}

func TestCreateDatabaseRequiresID(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)

	if err := adapter.CreateDatabase(context.Background(), DatabaseDocument{}); err == nil {
		t.Error("CreateDatabase accepted empty id")
	}
}

func TestPutGetDocument(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)
	ctx := context.Background()

	doc := &Document{}
	doc.Set("field0", "alpha")
	doc.Set("field1", "beta")

	if err := adapter.PutDocument(ctx, "user1", doc, nil); err != nil {
		t.Fatalf("PutDocument returned error: %v", err)
	}

	got, err := adapter.GetDocument(ctx, "user1")
	if err != nil {
		t.Fatalf("GetDocument returned error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("document has %d fields", got.Len())
	}
	if v, _ := got.Get("field0"); v != "alpha" {
		t.Errorf("field0 = %q", v)
	}
	if v, _ := got.Get("field1"); v != "beta" {
		t.Errorf("field1 = %q", v)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)

	_, err := adapter.GetDocument(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPutDocumentOverwrites(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)
	ctx := context.Background()

	first := &Document{}
	first.Set("old", "value")
	if err := adapter.PutDocument(ctx, "user1", first, nil); err != nil {
		t.Fatal(err)
	}

	second := &Document{}
	second.Set("new", "value")
	if err := adapter.PutDocument(ctx, "user1", second, nil); err != nil {
		t.Fatal(err)
	}

	got, err := adapter.GetDocument(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	// A put replaces the whole document: stale fields are gone.
	if _, ok := got.Get("old"); ok {
		t.Error("overwrite kept field from the previous document")
	}
	if _, ok := got.Get("new"); !ok {
		t.Error("overwrite lost the new field")
	}
}

func TestDeleteDocumentIdempotent(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)
	ctx := context.Background()

	doc := &Document{}
	doc.Set("f", "v")
	if err := adapter.PutDocument(ctx, "user1", doc, nil); err != nil {
		t.Fatal(err)
	}
	if err := adapter.DeleteDocument(ctx, "user1", nil); err != nil {
		t.Fatalf("DeleteDocument returned error: %v", err)
	}
	// Second delete hits a missing document and still succeeds.
	if err := adapter.DeleteDocument(ctx, "user1", nil); err != nil {
		t.Errorf("delete of absent document returned error: %v", err)
	}
}

func TestPutDocumentSendsEtagHeader(t *testing.T) {
	var gotEtag string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/build/version" {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotEtag = r.Header.Get("If-Match")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter, err := NewAdapter(Config{URL: srv.URL, Database: "YCSB", OperationTimeout: time.Second}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer adapter.Close()

	etag := "00000000-0000-0000-0000-000000000007"
	doc := &Document{}
	doc.Set("f", "v")
	if err := adapter.PutDocument(context.Background(), "user1", doc, &etag); err != nil {
		t.Fatal(err)
	}
	if gotEtag != etag {
		t.Errorf("If-Match = %q, want %q", gotEtag, etag)
	}
}

func TestClosedAdapterRejectsRequests(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)

	if err := adapter.Close(); err != nil {
		t.Fatal(err)
	}
	// Close twice is fine.
	if err := adapter.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := adapter.GetDocument(context.Background(), "user1"); err == nil {
		t.Error("GetDocument succeeded on closed adapter")
	}
	if err := adapter.Ping(context.Background()); err == nil {
		t.Error("Ping succeeded on closed adapter")
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	adapter := testAdapter(t, ts)

	if err := adapter.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck returned error: %v", err)
	}
}
