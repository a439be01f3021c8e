package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveFileAndURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	src := filepath.Join(t.TempDir(), "final.mp4")
	if err := os.WriteFile(src, []byte("video-bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	key, err := store.SaveFile(context.Background(), "videos/out.mp4", src)
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if key != "videos/out.mp4" {
		t.Fatalf("key = %q", key)
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("data = %q", data)
	}

	if got := store.URL(key); got != "http://localhost:8080/static/videos/out.mp4" {
		t.Fatalf("URL = %q", got)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "videos/a.mp4", "videos/a.mp4", false},
		{"leading slash", "/videos/a.mp4", "videos/a.mp4", false},
		{"dot prefix", "./videos/a.mp4", "videos/a.mp4", false},
		{"traversal", "../etc/passwd", "", true},
		{"nested traversal", "videos/../../etc/passwd", "", true},
		{"empty", "  ", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) = %q, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
