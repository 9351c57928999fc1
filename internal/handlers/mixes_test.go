package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/offbeatlabs/mooddj/internal/models"
)

func mixRouter(h *MixHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api/v1/mixes").Subrouter())
	return r
}

func TestGetMix(t *testing.T) {
	t.Parallel()

	t.Run("invalid ID", func(t *testing.T) {
		t.Parallel()

		h := NewMixHandler(&mockMixRepo{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/mixes/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		mixRouter(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		h := NewMixHandler(&mockMixRepo{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/mixes/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		mixRouter(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		mix := &models.Mix{ID: uuid.New(), Status: models.MixStatusDone, Compatibility: 7.5}
		mixRepo := &mockMixRepo{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Mix, error) {
				return mix, nil
			},
		}
		h := NewMixHandler(mixRepo)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/mixes/"+mix.ID.String(), nil)
		rec := httptest.NewRecorder()
		mixRouter(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

func TestRateMix(t *testing.T) {
	t.Parallel()

	doneMix := func() *models.Mix {
		return &models.Mix{ID: uuid.New(), Status: models.MixStatusDone}
	}

	t.Run("stores the rating and sanitized feedback", func(t *testing.T) {
		t.Parallel()

		mix := doneMix()

		var gotRating int
		var gotFeedback string
		mixRepo := &mockMixRepo{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Mix, error) {
				return mix, nil
			},
			SetRatingFunc: func(ctx context.Context, id uuid.UUID, rating int, feedback string) error {
				gotRating = rating
				gotFeedback = feedback
				return nil
			},
		}
		h := NewMixHandler(mixRepo)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mixes/"+mix.ID.String()+"/rating",
			strings.NewReader(`{"rating": 4, "feedback": "  great transition\u0000  "}`))
		rec := httptest.NewRecorder()
		mixRouter(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if gotRating != 4 {
			t.Errorf("rating = %d, want 4", gotRating)
		}
		if gotFeedback != "great transition" {
			t.Errorf("feedback = %q, want sanitized text", gotFeedback)
		}
	})

	t.Run("rejects a mix that is still rendering", func(t *testing.T) {
		t.Parallel()

		mix := &models.Mix{ID: uuid.New(), Status: models.MixStatusRendering}
		mixRepo := &mockMixRepo{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Mix, error) {
				return mix, nil
			},
		}
		h := NewMixHandler(mixRepo)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mixes/"+mix.ID.String()+"/rating",
			strings.NewReader(`{"rating": 5}`))
		rec := httptest.NewRecorder()
		mixRouter(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("rejects out-of-range ratings", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{"rating": 0}`, `{"rating": 6}`, `{}`} {
			mix := doneMix()
			mixRepo := &mockMixRepo{
				GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Mix, error) {
					return mix, nil
				},
			}
			h := NewMixHandler(mixRepo)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/mixes/"+mix.ID.String()+"/rating",
				strings.NewReader(body))
			rec := httptest.NewRecorder()
			mixRouter(h).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %s: status = %d, want 400", body, rec.Code)
			}
		}
	})
}
