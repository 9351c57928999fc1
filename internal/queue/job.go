package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypePlanSession asks the planner for an emotional plan
	JobTypePlanSession JobType = "plan_session"
	// JobTypeFetchTrack downloads one suggested track
	JobTypeFetchTrack JobType = "fetch_track"
	// JobTypeAnalyzeTrack runs audio analysis on a fetched track
	JobTypeAnalyzeTrack JobType = "analyze_track"
	// JobTypeMixPair selects and renders the session's next transition
	JobTypeMixPair JobType = "mix_pair"
	// JobTypeRenderVisuals renders mood frames for the session's visual window
	JobTypeRenderVisuals JobType = "render_visuals"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	SessionID  uuid.UUID      `json:"session_id"`
	TrackID    *uuid.UUID     `json:"track_id,omitempty"`  // for fetch/analyze jobs
	NotBefore  *time.Time     `json:"not_before,omitempty"` // earliest time to process (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // latest time to process (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, sessionID uuid.UUID, trackID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		SessionID:  sessionID,
		TrackID:    trackID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// WithDelay returns a copy of the job scheduled no earlier than notBefore,
// with the retry count bumped. Used when re-enqueueing after rate limits.
func (j *Job) WithDelay(notBefore time.Time) *Job {
	delayed := *j
	delayed.NotBefore = &notBefore
	delayed.RetryCount = j.RetryCount + 1
	return &delayed
}
