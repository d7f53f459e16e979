package profile

import "testing"

func TestGet_Preview(t *testing.T) {
	p := Get("preview")
	if p.MaxWidth != 320 || p.MaxHeight != 180 {
		t.Errorf("bounds: got %dx%d, want 320x180", p.MaxWidth, p.MaxHeight)
	}
	if p.Filter != "nearest" {
		t.Errorf("filter: got %q, want nearest", p.Filter)
	}
	if p.Format != "png" {
		t.Errorf("format: got %q, want png", p.Format)
	}
}

func TestGet_UnknownFallsBack(t *testing.T) {
	p := Get("custom")
	if p.Name != "custom" {
		t.Errorf("name: got %q, want custom", p.Name)
	}
	if p.MaxWidth != 320 || p.MaxHeight != 180 {
		t.Errorf("fallback bounds: got %dx%d", p.MaxWidth, p.MaxHeight)
	}
	if Known("custom") {
		t.Error("custom reported as built-in")
	}
	if Get("").Name != DefaultName {
		t.Errorf("empty name: got %q", Get("").Name)
	}
}

func TestOverride(t *testing.T) {
	p := Get("preview").Override(400, 0, "lanczos", "")
	if p.MaxWidth != 400 || p.MaxHeight != 180 {
		t.Errorf("bounds: got %dx%d, want 400x180", p.MaxWidth, p.MaxHeight)
	}
	if p.Filter != "lanczos" || p.Format != "png" {
		t.Errorf("filter/format: got %s/%s", p.Filter, p.Format)
	}
}

func TestValidate(t *testing.T) {
	if err := Get("minimal").Validate(); err != nil {
		t.Errorf("minimal: %v", err)
	}
	bad := Profile{Name: "bad", MaxWidth: 0, MaxHeight: 10}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero width")
	}
}
