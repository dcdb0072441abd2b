// Package ravendb implements the workload driver's DB contract on top of a
// RavenDB 3.5 server. It translates flat field-map records into RavenDB
// documents and backend outcomes into the driver's status vocabulary.
package ravendb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nimburion/ycsb-ravendb/pkg/observability/logger"
	store "github.com/nimburion/ycsb-ravendb/pkg/store/ravendb"
	"github.com/nimburion/ycsb-ravendb/pkg/ycsb"
)

// Property keys consumed from the harness property set.
const (
	// PropURL configures the RavenDB server URL.
	PropURL = "ravendb.url"
	// PropOperationTimeout configures the per-operation HTTP timeout.
	PropOperationTimeout = "ravendb.operation_timeout"
	// PropFieldFilterEnabled makes Read honor the requested field subset.
	// Off by default: the original binding always returned every field, and
	// workloads measured against it expect that behavior.
	PropFieldFilterEnabled = "ravendb.fieldfilter.enabled"
)

// DefaultURL is used when the property set carries no ravendb.url.
const DefaultURL = "http://localhost:10301"

const (
	databaseName            = "YCSB"
	databaseListPageSize    = 1024
	defaultOperationTimeout = 5 * time.Second
)

// provisioningSettings are the fixed settings a freshly created YCSB
// database gets, mirroring the server-side defaults the benchmark expects.
var provisioningSettings = map[string]string{
	"Raven/ActiveBundles":   "PeriodicExport",
	"Raven/DataDir":         `~\Databases\YCSB`,
	"Raven/AnonymousAccess": "Admin",
	"Raven/StorageEngine":   "voron",
}

// Binding is a DB implementation backed by RavenDB 3.5.
//
// The table argument of every operation is accepted for contract
// compatibility and ignored: RavenDB has a single document namespace per
// database and keys are not prefixed by table.
//
// An instance is owned by a single worker goroutine. Init must complete
// before the first operation; calling operations on an uninitialized
// binding is a precondition violation the binding does not guard against.
type Binding struct {
	logger      logger.Logger
	store       *store.Adapter
	fieldFilter bool
	initialized bool
}

// New creates an uninitialized binding.
func New(log logger.Logger) *Binding {
	return &Binding{logger: log}
}

// Init validates configuration, opens the document store session and
// provisions the YCSB database when it does not exist yet.
//
// A ravendb.url that does not start with "http://" is a fatal configuration
// error: the diagnostic is printed to stderr and the process exits with a
// non-zero status. Every other failure is returned to the caller.
func (b *Binding) Init(props ycsb.Properties) error {
	rawURL := props.Get(PropURL, DefaultURL)

	if !strings.HasPrefix(rawURL, "http://") {
		fmt.Fprintf(os.Stderr,
			"ERROR: Invalid URL: '%s'. Must be of the form 'http://<host>:<port>'. "+
				"https://ravendb.net/docs/article-page/3.5/java/start/getting-started\n",
			rawURL)
		os.Exit(1)
	}

	adapter, err := store.NewAdapter(store.Config{
		URL:              rawURL,
		Database:         databaseName,
		OperationTimeout: props.GetDuration(PropOperationTimeout, defaultOperationTimeout),
	}, b.logger)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}

	if err := b.provision(adapter); err != nil {
		_ = adapter.Close()
		return err
	}

	b.store = adapter
	b.fieldFilter = props.GetBool(PropFieldFilterEnabled, false)
	b.initialized = true
	return nil
}

// provision checks for the YCSB database and creates it when absent. The
// check-then-create sequence is not atomic across instances; the create
// call tolerates losing that race (an existing database is not an error).
func (b *Binding) provision(adapter *store.Adapter) error {
	ctx := context.Background()

	names, err := adapter.DatabaseNames(ctx, databaseListPageSize)
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}

	for _, name := range names {
		if strings.EqualFold(name, databaseName) {
			return nil
		}
	}

	err = adapter.CreateDatabase(ctx, store.DatabaseDocument{
		ID:       databaseName,
		Settings: provisioningSettings,
	})
	if err != nil {
		return fmt.Errorf("failed to create database %q: %w", databaseName, err)
	}

	b.logger.Info("provisioned database", "database", databaseName)
	return nil
}

// Cleanup releases the document store session. It is idempotent: on an
// uninitialized binding it does nothing.
func (b *Binding) Cleanup() error {
	if !b.initialized {
		return nil
	}
	b.initialized = false

	if err := b.store.Close(); err != nil {
		return fmt.Errorf("failed to close document store: %w", err)
	}
	return nil
}

// Read fetches the document stored under key and decodes every field value
// back to UTF-8 bytes in result.
//
// Unless ravendb.fieldfilter.enabled is set, the fields argument is ignored
// and all fields are returned regardless of the requested subset.
func (b *Binding) Read(ctx context.Context, table, key string, fields []string, result map[string][]byte) ycsb.Status {
	doc, err := b.store.GetDocument(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return ycsb.StatusNotFound
	}
	if err != nil {
		b.logger.Error("read failed", "key", key, "error", err)
		return ycsb.StatusError
	}

	var wanted map[string]struct{}
	if b.fieldFilter && fields != nil {
		wanted = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			wanted[f] = struct{}{}
		}
	}

	doc.Each(func(name, value string) {
		if wanted != nil {
			if _, ok := wanted[name]; !ok {
				return
			}
		}
		result[name] = []byte(value)
	})
	return ycsb.StatusOK
}

// Scan is not supported by this binding and always reports
// NOT_IMPLEMENTED without touching the backend or result.
func (b *Binding) Scan(ctx context.Context, table, startKey string, recordCount int, fields []string, result *[]map[string][]byte) ycsb.Status {
	return ycsb.StatusNotImplemented
}

// Insert stores values as a document under key. Field values round-trip
// through a string encoding, so bytes that are not valid UTF-8 do not
// survive unchanged. The write carries no etag precondition: an existing
// document under the same key is silently replaced.
func (b *Binding) Insert(ctx context.Context, table, key string, values []ycsb.Field) ycsb.Status {
	doc := &store.Document{}
	for _, f := range values {
		doc.Set(f.Name, string(f.Value))
	}

	if err := b.store.PutDocument(ctx, key, doc, nil); err != nil {
		b.logger.Error("insert failed", "key", key, "error", err)
		return ycsb.StatusError
	}
	return ycsb.StatusOK
}

// Update is not supported by this binding and always reports
// NOT_IMPLEMENTED without touching the backend.
func (b *Binding) Update(ctx context.Context, table, key string, values []ycsb.Field) ycsb.Status {
	return ycsb.StatusNotImplemented
}

// Delete removes the document stored under key unconditionally. Deleting a
// key that was never inserted still reports OK; the backend treats the
// delete as idempotent.
func (b *Binding) Delete(ctx context.Context, table, key string) ycsb.Status {
	if err := b.store.DeleteDocument(ctx, key, nil); err != nil {
		b.logger.Error("delete failed", "key", key, "error", err)
		return ycsb.StatusError
	}
	return ycsb.StatusOK
}

var _ ycsb.DB = (*Binding)(nil)
