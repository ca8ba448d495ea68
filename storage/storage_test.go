package storage

import (
	"strings"
	"testing"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "avatars/1/a.png", "https://cdn.example.com/avatars/1/a.png"},
		{"https://cdn.example.com/", "/avatars/1/a.png", "https://cdn.example.com/avatars/1/a.png"},
		{"https://example.com/media", "avatars/2/b.jpg", "https://example.com/media/avatars/2/b.jpg"},
		{"https://example.com/media/", "", ""},
	}

	for _, tt := range tests {
		base, err := parsePublicBase(tt.base)
		if err != nil {
			t.Fatalf("parsePublicBase(%q): %v", tt.base, err)
		}
		if got := publicURL(base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestParsePublicBaseRejectsRelative(t *testing.T) {
	if _, err := parsePublicBase("cdn.example.com"); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}

func TestAvatarKey(t *testing.T) {
	a := AvatarKey(42, ".png")
	b := AvatarKey(42, ".png")
	if a == b {
		t.Fatalf("keys must be unique, got %q twice", a)
	}
	if !strings.HasPrefix(a, "avatars/42/") || !strings.HasSuffix(a, ".png") {
		t.Fatalf("unexpected key %q", a)
	}
}
