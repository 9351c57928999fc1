package fetcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Artist - Track", "Artist - Track"},
		{"AC/DC - Back in Black", "AC_DC - Back in Black"},
		{"weird\\path", "weird_path"},
	}

	for _, tt := range tests {
		if got := sanitizeTitle(tt.input); got != tt.want {
			t.Errorf("sanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("  short  ", 100); got != "short" {
		t.Errorf("truncate() = %q, want %q", got, "short")
	}

	long := strings.Repeat("x", 20)
	if got := truncate(long, 10); got != strings.Repeat("x", 10)+"..." {
		t.Errorf("truncate() = %q", got)
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileExists(path) {
		t.Error("fileExists() = false for an existing file")
	}
	if fileExists(filepath.Join(dir, "missing.mp3")) {
		t.Error("fileExists() = true for a missing file")
	}
	if fileExists("") {
		t.Error("fileExists(\"\") = true")
	}
}

func TestFindExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := New("", dir, nil, nil)

	mp3 := filepath.Join(dir, "Some Track_abc123.mp3")
	if err := os.WriteFile(mp3, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Same video ID but wrong extension must not match
	if err := os.WriteFile(filepath.Join(dir, "Some Track_abc123.webm"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := f.findExisting("abc123")
	if err != nil {
		t.Fatalf("findExisting() error: %v", err)
	}
	if got != mp3 {
		t.Errorf("findExisting() = %q, want %q", got, mp3)
	}

	if _, err := f.findExisting("zzz999"); err == nil {
		t.Error("findExisting() should fail for an unknown video ID")
	}
	if _, err := f.findExisting(""); err == nil {
		t.Error("findExisting() should fail for an empty video ID")
	}
}
