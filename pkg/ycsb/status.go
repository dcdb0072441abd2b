package ycsb

// Status is the result vocabulary every binding operation reports back to the
// workload driver. It deliberately stays small: the driver only distinguishes
// success, a read miss, a backend failure, and a permanent capability gap.
type Status int

const (
	// StatusOK indicates the operation completed successfully.
	StatusOK Status = iota

	// StatusNotFound indicates a read addressed a key that has no document.
	// It is a first-class outcome, not an error.
	StatusNotFound

	// StatusError indicates a backend-level failure (network, malformed
	// response, server error). The binding logs the cause; callers only see
	// this status.
	StatusError

	// StatusNotImplemented indicates the binding does not support the
	// operation at all. Callers must treat it as permanent, not transient.
	StatusNotImplemented
)

// String returns the canonical name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusError:
		return "ERROR"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// IsOK reports whether the status represents a successful operation.
func (s Status) IsOK() bool {
	return s == StatusOK
}
