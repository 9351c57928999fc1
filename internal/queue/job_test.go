package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	trackID := uuid.New()

	job := NewJob(JobTypeFetchTrack, sessionID, &trackID)

	if job.Type != JobTypeFetchTrack {
		t.Errorf("Type = %q, want %q", job.Type, JobTypeFetchTrack)
	}
	if job.SessionID != sessionID {
		t.Errorf("SessionID = %v, want %v", job.SessionID, sessionID)
	}
	if job.TrackID == nil || *job.TrackID != trackID {
		t.Errorf("TrackID = %v, want %v", job.TrackID, trackID)
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", job.MaxRetries)
	}
	if job.Metadata == nil {
		t.Error("Metadata should be initialized")
	}
}

func TestShouldProcess(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{"no constraints", nil, nil, true},
		{"not before in past", &past, nil, true},
		{"not before in future", &future, nil, false},
		{"not after in future", nil, &future, true},
		{"expired", nil, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewJob(JobTypeMixPair, uuid.New(), nil)
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter

			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanRetry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypePlanSession, uuid.New(), nil)

	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false at retry count %d", job.RetryCount)
		}
		job.IncrementRetry()
	}

	if job.CanRetry() {
		t.Errorf("CanRetry() = true at retry count %d (max %d)", job.RetryCount, job.MaxRetries)
	}
}

func TestWithDelay(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeAnalyzeTrack, uuid.New(), nil)
	job.RetryCount = 1

	notBefore := time.Now().Add(5 * time.Minute)
	delayed := job.WithDelay(notBefore)

	if delayed == job {
		t.Fatal("WithDelay should return a copy")
	}
	if delayed.NotBefore == nil || !delayed.NotBefore.Equal(notBefore) {
		t.Errorf("NotBefore = %v, want %v", delayed.NotBefore, notBefore)
	}
	if delayed.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", delayed.RetryCount)
	}
	if job.RetryCount != 1 {
		t.Errorf("original RetryCount changed to %d", job.RetryCount)
	}
	if delayed.ShouldProcess() {
		t.Error("delayed job should not be processable yet")
	}
}
