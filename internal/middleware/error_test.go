package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler_NoPanic(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	middleware := ErrorHandler(zap.NewNop())(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	middleware := ErrorHandler(zap.NewNop())(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	// Should not panic
	middleware.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body.Success {
		t.Error("Expected success to be false")
	}

	if body.Error != "Internal Server Error" {
		t.Errorf("Expected error 'Internal Server Error', got '%s'", body.Error)
	}

	if body.Message != "An unexpected error occurred" {
		t.Errorf("Expected message 'An unexpected error occurred', got '%s'", body.Message)
	}

	if body.Path != "/test" {
		t.Errorf("Expected path '/test', got '%s'", body.Path)
	}

	if body.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestErrorHandler_PanicLogFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	middleware := ErrorHandler(logger)(handler)

	req := httptest.NewRequest("GET", "/api/v1/sessions%1b[31m", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	entries := logs.FilterMessage("panic_recovered").All()
	if len(entries) != 1 {
		t.Fatalf("panic_recovered entries = %d, want 1", len(entries))
	}

	fields := entries[0].ContextMap()
	if got := fields["path"]; got != "/api/v1/sessions[31m" {
		t.Errorf("logged path = %q, want escape sequence stripped", got)
	}
	if got := fields["method"]; got != "GET" {
		t.Errorf("logged method = %q, want GET", got)
	}
	if stack, ok := fields["stack"].(string); !ok || stack == "" {
		t.Error("panic log should carry a stack trace")
	}
}

func TestErrorHandler_PanicWithNil(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var nilMap map[string]string
		nilMap["key"] = "value" // This will panic
	})

	middleware := ErrorHandler(zap.NewNop())(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}
}
