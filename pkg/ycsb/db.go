// Package ycsb defines the contract between the workload driver and a
// database binding. The driver is backend-agnostic: it generates flat
// field-map records and calls one binding instance per worker goroutine
// through the DB interface.
package ycsb

import "context"

// Field is one named value of a record. Writes carry records as ordered
// field slices so the caller's insertion order survives serialization;
// field order is not significant on reads.
type Field struct {
	Name  string
	Value []byte
}

// Fields builds an ordered field slice from name/value pairs, mostly a test
// and workload convenience.
func Fields(pairs ...Field) []Field {
	return pairs
}

// DB is the operation contract every binding implements.
//
// Lifecycle: Init must be called exactly once before any other method and
// Cleanup once after the last one. Calling an operation on an uninitialized
// binding is a precondition violation with undefined behavior; the driver
// enforces the ordering, bindings do not guard against it.
//
// Each operation is synchronous and performs at most one backend round trip.
// A binding instance is owned by a single worker goroutine and needs no
// internal locking.
type DB interface {
	// Init prepares the binding using the harness property set. A failure
	// leaves the binding unusable.
	Init(props Properties) error

	// Cleanup releases backend resources. It is idempotent; on an
	// uninitialized binding it is a no-op.
	Cleanup() error

	// Read looks up the record stored under key. fields selects a subset of
	// field names, nil means all. On StatusOK the result map holds the
	// record's fields; on any other status it is left untouched.
	Read(ctx context.Context, table, key string, fields []string, result map[string][]byte) Status

	// Scan reads recordCount records starting at startKey in key order,
	// appending one field map per record to result.
	Scan(ctx context.Context, table, startKey string, recordCount int, fields []string, result *[]map[string][]byte) Status

	// Insert stores a new record under key. Bindings may treat this as an
	// unconditional write that silently replaces an existing record.
	Insert(ctx context.Context, table, key string, values []Field) Status

	// Update rewrites fields of the record stored under key.
	Update(ctx context.Context, table, key string, values []Field) Status

	// Delete removes the record stored under key.
	Delete(ctx context.Context, table, key string) Status
}
