package ycsb

import "testing"

func TestStatusString(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{StatusOK, "OK"},
		{StatusNotFound, "NOT_FOUND"},
		{StatusError, "ERROR"},
		{StatusNotImplemented, "NOT_IMPLEMENTED"},
		{Status(42), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.status.String(); got != c.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(c.status), got, c.want)
		}
	}
}

func TestStatusIsOK(t *testing.T) {
	if !StatusOK.IsOK() {
		t.Error("StatusOK.IsOK() = false")
	}
	for _, s := range []Status{StatusNotFound, StatusError, StatusNotImplemented} {
		if s.IsOK() {
			t.Errorf("%s.IsOK() = true", s)
		}
	}
}
