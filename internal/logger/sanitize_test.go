package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{"empty", "", 100, ""},
		{"plain text", "hello world", 100, "hello world"},
		{"control characters removed", "hello\x00\x07world", 100, "helloworld"},
		{"newline and tab kept", "a\n\tb", 100, "a\n\tb"},
		{"truncated", strings.Repeat("x", 20), 10, strings.Repeat("x", 10) + "..."},
		{"zero max uses default", "short", 0, "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q, want empty", got)
	}

	err := errors.New("boom\x00bang")
	if got := SanitizeError(err); got != "boombang" {
		t.Errorf("SanitizeError() = %q, want %q", got, "boombang")
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	if got := SanitizePath(""); got != "" {
		t.Errorf("SanitizePath(\"\") = %q, want empty", got)
	}
	if got := SanitizePath("/api/v1/sessions\x1b[31m"); got != "/api/v1/sessions[31m" {
		t.Errorf("SanitizePath() = %q", got)
	}
}
