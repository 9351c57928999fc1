package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	t.Run("rejects oversized Content-Length early", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		})

		middleware := MaxRequestSize(64)(handler)

		req := httptest.NewRequest("POST", "/test", strings.NewReader(strings.Repeat("x", 128)))
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected status 413, got %d", w.Code)
		}
	})

	t.Run("wraps body with MaxBytesReader", func(t *testing.T) {
		t.Parallel()

		var readErr error
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		})

		middleware := MaxRequestSize(64)(handler)

		// No Content-Length, so the early check is skipped and the
		// reader enforces the limit
		req := httptest.NewRequest("POST", "/test", io.NopCloser(strings.NewReader(strings.Repeat("x", 128))))
		req.ContentLength = -1
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if readErr == nil {
			t.Error("Expected read error from MaxBytesReader")
		}
	})

	t.Run("allows small bodies", func(t *testing.T) {
		t.Parallel()

		var got []byte
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		})

		middleware := MaxRequestSize(64)(handler)

		req := httptest.NewRequest("POST", "/test", strings.NewReader("hello"))
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if string(got) != "hello" {
			t.Errorf("Body = %q, want hello", got)
		}
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		middleware := MaxRequestSize(0)(handler)

		req := httptest.NewRequest("POST", "/test", strings.NewReader("hello"))
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}
