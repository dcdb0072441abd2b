package ycsb

import (
	"testing"
	"time"
)

func TestPropertiesGet(t *testing.T) {
	p := Properties{"ravendb.url": "http://raven:10301", "empty": ""}

	if got := p.Get("ravendb.url", "http://localhost:10301"); got != "http://raven:10301" {
		t.Errorf("Get returned %q", got)
	}
	if got := p.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("Get on missing key returned %q", got)
	}
	// Present-but-empty wins over the fallback.
	if got := p.Get("empty", "fallback"); got != "" {
		t.Errorf("Get on empty value returned %q", got)
	}
}

func TestPropertiesGetBool(t *testing.T) {
	p := Properties{"flag": "true", "junk": "not-a-bool"}

	if !p.GetBool("flag", false) {
		t.Error("GetBool(flag) = false")
	}
	if p.GetBool("missing", false) {
		t.Error("GetBool(missing) = true")
	}
	if !p.GetBool("junk", true) {
		t.Error("GetBool(junk) did not fall back")
	}
}

func TestPropertiesGetInt(t *testing.T) {
	p := Properties{"count": "1024", "junk": "x"}

	if got := p.GetInt("count", 1); got != 1024 {
		t.Errorf("GetInt(count) = %d", got)
	}
	if got := p.GetInt("junk", 7); got != 7 {
		t.Errorf("GetInt(junk) = %d", got)
	}
}

func TestPropertiesGetDuration(t *testing.T) {
	p := Properties{"timeout": "2s"}

	if got := p.GetDuration("timeout", time.Second); got != 2*time.Second {
		t.Errorf("GetDuration(timeout) = %v", got)
	}
	if got := p.GetDuration("missing", 5*time.Second); got != 5*time.Second {
		t.Errorf("GetDuration(missing) = %v", got)
	}
}
