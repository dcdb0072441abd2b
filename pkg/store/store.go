// Package store defines the shared lifecycle contract for backend adapters.
package store

import "context"

// Adapter is the minimal lifecycle and health contract a backend adapter
// satisfies: health probing for the check command and release of the
// underlying session on shutdown.
type Adapter interface {
	HealthCheck(ctx context.Context) error
	Close() error
}
