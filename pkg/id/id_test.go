package id

import "testing"

func TestNew(t *testing.T) {
	a := New()
	b := New()

	if len(a) != 26 {
		t.Fatalf("ulid length: got %d, want 26", len(a))
	}
	if a == b {
		t.Fatalf("ids must be unique, got %q twice", a)
	}
}
