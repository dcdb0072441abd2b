package ravendb

import (
	"bytes"
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nimburion/ycsb-ravendb/pkg/ycsb"
)

// Valid-UTF-8 values always survive insert/read unchanged.
func TestProperty_InsertReadRoundTrip(t *testing.T) {
	m := newRavenMock(t, "YCSB")
	b := initBinding(t, m, nil)
	ctx := context.Background()

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties := gopter.NewProperties(params)

	properties.Property("UTF-8 field values round-trip", prop.ForAll(
		func(key string, value string) bool {
			docKey := "user-" + key
			values := []ycsb.Field{{Name: "field0", Value: []byte(value)}}
			if b.Insert(ctx, "usertable", docKey, values) != ycsb.StatusOK {
				return false
			}

			result := map[string][]byte{}
			if b.Read(ctx, "usertable", docKey, nil, result) != ycsb.StatusOK {
				return false
			}
			return bytes.Equal(result["field0"], []byte(value))
		},
		gen.Identifier(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// Update and Scan report NOT_IMPLEMENTED for every input, without side
// effects on the result sequence.
func TestProperty_UnsupportedOperations(t *testing.T) {
	m := newRavenMock(t, "YCSB")
	b := initBinding(t, m, nil)
	ctx := context.Background()

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties := gopter.NewProperties(params)

	properties.Property("update is never implemented", prop.ForAll(
		func(table, key, value string) bool {
			values := []ycsb.Field{{Name: "f", Value: []byte(value)}}
			return b.Update(ctx, table, key, values) == ycsb.StatusNotImplemented
		},
		gen.Identifier(), gen.Identifier(), gen.AnyString(),
	))

	properties.Property("scan is never implemented", prop.ForAll(
		func(table, startKey string, count int) bool {
			var results []map[string][]byte
			status := b.Scan(ctx, table, startKey, count, nil, &results)
			return status == ycsb.StatusNotImplemented && results == nil
		},
		gen.Identifier(), gen.Identifier(), gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
