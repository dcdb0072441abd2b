package ycsb

import (
	"strconv"
	"time"
)

// Properties is the flat key/value property set the driver hands to a
// binding at Init time. Keys are dotted, e.g. "ravendb.url".
type Properties map[string]string

// Get returns the value for key, or fallback when the key is absent.
// An empty string stored under the key counts as present.
func (p Properties) Get(key, fallback string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return fallback
}

// GetBool returns the boolean value for key, or fallback when the key is
// absent or not parseable.
func (p Properties) GetBool(key string, fallback bool) bool {
	v, ok := p[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetInt returns the integer value for key, or fallback when the key is
// absent or not parseable.
func (p Properties) GetInt(key string, fallback int) int {
	v, ok := p[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetDuration returns the duration value for key, or fallback when the key
// is absent or not parseable.
func (p Properties) GetDuration(key string, fallback time.Duration) time.Duration {
	v, ok := p[key]
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
