package cancel

import "testing"

func TestIsCancelledDefaultsFalse(t *testing.T) {
	Reset()
	if IsCancelled() {
		t.Error("expected not cancelled by default")
	}
}

func TestRequestSetsFlag(t *testing.T) {
	Reset()
	Request()
	if !IsCancelled() {
		t.Error("expected cancelled after Request")
	}
	Reset()
}

func TestRequestIsIdempotent(t *testing.T) {
	Reset()
	Request()
	Request()
	if !IsCancelled() {
		t.Error("expected cancelled after repeated Request")
	}
	Reset()
}

func TestResetClearsFlag(t *testing.T) {
	Request()
	Reset()
	if IsCancelled() {
		t.Error("expected not cancelled after Reset")
	}
}
