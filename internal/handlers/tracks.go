package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/offbeatlabs/mooddj/internal/database"
)

// TrackHandler handles track-related requests
type TrackHandler struct {
	trackRepo database.TrackRepositoryInterface
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(trackRepo database.TrackRepositoryInterface) *TrackHandler {
	return &TrackHandler{trackRepo: trackRepo}
}

// RegisterRoutes registers track routes on the given router
// The router should already have the /tracks prefix
func (h *TrackHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{id}", h.GetTrack).Methods("GET")
}

// GetTrack retrieves a track by ID, including its analysis when available
func (h *TrackHandler) GetTrack(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid track ID")
		return
	}

	track, err := h.trackRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Track not found")
		return
	}

	respondJSON(w, http.StatusOK, track)
}
