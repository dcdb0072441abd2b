// Package testutil holds small helpers shared by test files.
package testutil

import (
	"os"
	"testing"
)

// SkipIfShort skips the test if running in short mode. Used for tests that
// spawn subprocesses or wait on network timeouts.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping slow test in short mode")
	}
}

// RequireIntegration skips the test unless INTEGRATION_TESTS=1 is set.
// Integration tests expect a reachable RavenDB server.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("skipping integration test (set INTEGRATION_TESTS=1 to run)")
	}
}
