package hasher

import (
	"strings"
	"testing"
)

func TestPathHash_Stable(t *testing.T) {
	a := PathHash("nature/forest.png", 16)
	b := PathHash("nature/forest.png", 16)
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("length: got %d, want 16", len(a))
	}
	if PathHash("city/forest.png", 16) == a {
		t.Error("different paths produced the same hash")
	}
}

func TestPathHash_Truncate(t *testing.T) {
	full := PathHash("x", 0)
	if len(full) != 16 {
		t.Fatalf("full length: got %d, want 16", len(full))
	}
	if short := PathHash("x", 8); short != full[:8] {
		t.Errorf("truncated: got %s, want %s", short, full[:8])
	}
}

func TestContentHashReader(t *testing.T) {
	h1, err := ContentHashReader(strings.NewReader("thumbnail bytes"), 16)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := ContentHashReader(strings.NewReader("thumbnail bytes"), 16)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Errorf("reader hash not stable: %s vs %s", h1, h2)
	}
	// Same bytes hashed as a path string must agree with the reader form.
	if p := PathHash("thumbnail bytes", 16); p != h1 {
		t.Errorf("string and reader hash differ: %s vs %s", p, h1)
	}
}
