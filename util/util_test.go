package util

import "testing"

func TestPtrDeref(t *testing.T) {
	if got := Deref(Ptr(true)); !got {
		t.Error("Deref(Ptr(true)) = false")
	}
	var p *bool
	if Deref(p) {
		t.Error("Deref(nil) = true")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "en", "fr"); got != "en" {
		t.Errorf("got %q", got)
	}
	if got := Coalesce[string](); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 << 20},
		{"512kb", 512 << 10},
		{"2GB", 2 << 30},
		{"1024", 1024},
		{"64B", 64},
		{" 1 MB ", 1 << 20},
		{"", 7},
		{"lots", 7},
		{"-1KB", 7},
	}
	for _, tt := range tests {
		if got := ParseSize(tt.in, 7); got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("abcdefgh", 3); got != "abc***" {
		t.Errorf("got %q", got)
	}
	if got := MaskSecret("ab", 3); got != "***" {
		t.Errorf("got %q", got)
	}
}
