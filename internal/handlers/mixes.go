package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/offbeatlabs/mooddj/internal/database"
	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/validation"
)

const (
	// MaxFeedbackLength is the maximum length for mix rating feedback
	MaxFeedbackLength = 1000
)

// MixHandler handles mix-related requests
type MixHandler struct {
	mixRepo database.MixRepositoryInterface
}

// NewMixHandler creates a new mix handler
func NewMixHandler(mixRepo database.MixRepositoryInterface) *MixHandler {
	return &MixHandler{mixRepo: mixRepo}
}

// RegisterRoutes registers mix routes on the given router
// The router should already have the /mixes prefix
func (h *MixHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{id}", h.GetMix).Methods("GET")
	r.HandleFunc("/{id}/rating", h.RateMix).Methods("POST")
}

// RateMixRequest represents a mix rating request
type RateMixRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback,omitempty" validate:"max=1000"`
}

// GetMix retrieves a mix by ID
func (h *MixHandler) GetMix(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid mix ID")
		return
	}

	mix, err := h.mixRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Mix not found")
		return
	}

	respondJSON(w, http.StatusOK, mix)
}

// RateMix stores a 1-5 rating and optional feedback for a rendered mix
func (h *MixHandler) RateMix(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid mix ID")
		return
	}

	ctx := r.Context()
	mix, err := h.mixRepo.GetByID(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Mix not found")
		return
	}

	if mix.Status != models.MixStatusDone {
		respondJSONError(w, http.StatusConflict, "Conflict", "Mix has not finished rendering")
		return
	}

	var req RateMixRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	// Validate request
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	req.Feedback = validation.SanitizeText(req.Feedback)

	if err := h.mixRepo.SetRating(ctx, id, req.Rating, req.Feedback); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save rating")
		return
	}

	mix.Rating = &req.Rating
	mix.Feedback = req.Feedback

	respondJSON(w, http.StatusOK, mix)
}
