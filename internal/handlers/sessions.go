package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/offbeatlabs/mooddj/internal/database"
	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/queue"
	"github.com/offbeatlabs/mooddj/internal/session"
	"github.com/offbeatlabs/mooddj/internal/validation"
)

const (
	// MaxPromptLength is the maximum length for a mood prompt
	MaxPromptLength = 500
	// MinPromptLength is the minimum length for a mood prompt
	MinPromptLength = 5
)

// SessionHandler handles session-related requests
type SessionHandler struct {
	sessionRepo database.SessionRepositoryInterface
	trackRepo   database.TrackRepositoryInterface
	mixRepo     database.MixRepositoryInterface
	jobQueue    queue.JobQueue
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	sessionRepo database.SessionRepositoryInterface,
	trackRepo database.TrackRepositoryInterface,
	mixRepo database.MixRepositoryInterface,
	jobQueue queue.JobQueue,
) *SessionHandler {
	return &SessionHandler{
		sessionRepo: sessionRepo,
		trackRepo:   trackRepo,
		mixRepo:     mixRepo,
		jobQueue:    jobQueue,
	}
}

// RegisterRoutes registers session routes on the given router
// The router should already have the /sessions prefix (e.g., from apiRouter.PathPrefix("/sessions"))
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateSession).Methods("POST")
	r.HandleFunc("", h.ListActiveSessions).Methods("GET")
	r.HandleFunc("/{id}", h.GetSession).Methods("GET")
	r.HandleFunc("/{id}/prompt", h.ChangePrompt).Methods("POST")
	r.HandleFunc("/{id}/end", h.EndSession).Methods("POST")
	r.HandleFunc("/{id}/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/{id}/tracks", h.ListTracks).Methods("GET")
	r.HandleFunc("/{id}/mixes", h.ListMixes).Methods("GET")
}

// CreateSessionRequest represents a create session request
type CreateSessionRequest struct {
	Prompt string `json:"prompt" validate:"required,min=5,max=500"`
}

// ChangePromptRequest represents a mid-session prompt change
type ChangePromptRequest struct {
	Prompt string `json:"prompt" validate:"required,min=5,max=500"`
}

// CreateSession starts a new mix session from a mood prompt
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
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

	// Sanitize prompt input
	req.Prompt = validation.SanitizeText(req.Prompt)
	if len(req.Prompt) < MinPromptLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Prompt is too short after sanitization")
		return
	}

	ctx := r.Context()
	sess := &models.Session{
		ID:     uuid.New(),
		Prompt: req.Prompt,
		Status: models.SessionStatusPlanning,
	}

	if err := h.sessionRepo.Create(ctx, sess); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create session")
		return
	}

	job := queue.NewJob(queue.JobTypePlanSession, sess.ID, nil)
	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue planning job")
		return
	}

	respondJSON(w, http.StatusCreated, sess)
}

// ListActiveSessions lists sessions that are planning or active
func (h *SessionHandler) ListActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionRepo.ListActive(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve sessions")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// GetSession retrieves a session by ID
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// ChangePrompt redirects the emotional journey mid-session. The previous
// prompt is kept in the session's history and a refresh plan job is queued.
func (h *SessionHandler) ChangePrompt(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if sess.Status == models.SessionStatusEnded {
		respondJSONError(w, http.StatusConflict, "Conflict", "Session has already ended")
		return
	}

	var req ChangePromptRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

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

	req.Prompt = validation.SanitizeText(req.Prompt)
	if len(req.Prompt) < MinPromptLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Prompt is too short after sanitization")
		return
	}

	ctx := r.Context()

	playedCount, err := h.playedCount(ctx, sess.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tracks")
		return
	}

	sess.PromptHistory = append(sess.PromptHistory, models.PromptChange{
		OldPrompt: sess.Prompt,
		NewPrompt: req.Prompt,
		AtTrack:   playedCount,
		ChangedAt: time.Now().UTC(),
	})
	sess.Prompt = req.Prompt

	if err := h.sessionRepo.Update(ctx, sess); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update session")
		return
	}

	job := queue.NewJob(queue.JobTypePlanSession, sess.ID, nil)
	job.Metadata["refresh"] = true
	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue planning job")
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// EndSession ends a session
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if sess.Status == models.SessionStatusEnded {
		respondJSONError(w, http.StatusConflict, "Conflict", "Session has already ended")
		return
	}

	now := time.Now().UTC()
	sess.Status = models.SessionStatusEnded
	sess.EndedAt = &now

	if err := h.sessionRepo.Update(r.Context(), sess); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to end session")
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// GetStats returns the session's journey statistics
func (h *SessionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	tracks, err := h.trackRepo.GetBySessionID(ctx, sess.ID, nil)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tracks")
		return
	}

	mixes, err := h.mixRepo.GetBySessionID(ctx, sess.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve mixes")
		return
	}

	var mixScores []float64
	for _, m := range mixes {
		if m.Status == models.MixStatusDone {
			mixScores = append(mixScores, m.Compatibility)
		}
	}

	stats := session.ComputeStats(playedInOrder(tracks), sess.Plan, mixScores)
	respondJSON(w, http.StatusOK, stats)
}

// ListTracks lists the session's tracks, optionally filtered by status
func (h *SessionHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var status *models.TrackStatus
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateTrackStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sEnum := models.TrackStatus(s)
		status = &sEnum
	}

	tracks, err := h.trackRepo.GetBySessionID(r.Context(), sess.ID, status)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tracks")
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

// ListMixes lists the session's rendered mixes
func (h *SessionHandler) ListMixes(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	mixes, err := h.mixRepo.GetBySessionID(r.Context(), sess.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve mixes")
		return
	}

	respondJSON(w, http.StatusOK, mixes)
}

// loadSession parses the route ID and fetches the session, writing the error
// response itself when it fails
func (h *SessionHandler) loadSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid session ID")
		return nil, false
	}

	sess, err := h.sessionRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Session not found")
		return nil, false
	}

	return sess, true
}

func (h *SessionHandler) playedCount(ctx context.Context, sessionID uuid.UUID) (int, error) {
	tracks, err := h.trackRepo.GetBySessionID(ctx, sessionID, nil)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, t := range tracks {
		if t.Played {
			count++
		}
	}
	return count, nil
}

// playedInOrder filters played tracks and sorts them by when they played
func playedInOrder(tracks []*models.Track) []*models.Track {
	var played []*models.Track
	for _, t := range tracks {
		if t.Played {
			played = append(played, t)
		}
	}

	sort.Slice(played, func(i, j int) bool {
		return played[i].UpdatedAt.Before(played[j].UpdatedAt)
	})

	return played
}
