package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/offbeatlabs/mooddj/internal/cache"
	"github.com/offbeatlabs/mooddj/internal/database"
	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/queue"
	"github.com/offbeatlabs/mooddj/internal/services/mixer"
	"github.com/offbeatlabs/mooddj/internal/services/planner"
)

// TrackFetcher resolves a query to downloaded audio
type TrackFetcher interface {
	Fetch(ctx context.Context, queryOrURL string) (*cache.FetchResult, error)
}

// TrackAnalyzer extracts audio features from a downloaded file
type TrackAnalyzer interface {
	AnalyzeTrack(ctx context.Context, filePath string) (*models.Analysis, error)
}

// MixRenderer renders a transition between two tracks
type MixRenderer interface {
	Render(ctx context.Context, trackA, trackB *models.Track, style models.MixStyle, outputName string) (*mixer.RenderResult, error)
}

// VisualRenderer draws mood frames for a visual window
type VisualRenderer interface {
	RenderMoodFrames(moods []string, style models.VisualStyle) ([]string, error)
}

// Pipeline processes the session's job types end to end
type Pipeline struct {
	provider    planner.Provider
	fetcher     TrackFetcher
	analyzer    TrackAnalyzer
	mixer       MixRenderer
	visuals     VisualRenderer
	sessionRepo database.SessionRepositoryInterface
	trackRepo   database.TrackRepositoryInterface
	mixRepo     database.MixRepositoryInterface
	jobQueue    queue.JobQueue // For re-enqueueing jobs with delays
}

// NewPipeline creates a pipeline worker
func NewPipeline(
	provider planner.Provider,
	trackFetcher TrackFetcher,
	trackAnalyzer TrackAnalyzer,
	mixRenderer MixRenderer,
	visualRenderer VisualRenderer,
	sessionRepo database.SessionRepositoryInterface,
	trackRepo database.TrackRepositoryInterface,
	mixRepo database.MixRepositoryInterface,
	jobQueue queue.JobQueue,
) *Pipeline {
	return &Pipeline{
		provider:    provider,
		fetcher:     trackFetcher,
		analyzer:    trackAnalyzer,
		mixer:       mixRenderer,
		visuals:     visualRenderer,
		sessionRepo: sessionRepo,
		trackRepo:   trackRepo,
		mixRepo:     mixRepo,
		jobQueue:    jobQueue,
	}
}

// ProcessJob processes a job based on its type
func (p *Pipeline) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), skipping", job.ID, job.NotBefore)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job for later processing: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypePlanSession:
		if err := p.ProcessPlanSessionJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err, "plan session")
		}

	case queue.JobTypeFetchTrack:
		if err := p.ProcessFetchTrackJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err, "fetch track")
		}

	case queue.JobTypeAnalyzeTrack:
		if err := p.ProcessAnalyzeTrackJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err, "analyze track")
		}

	case queue.JobTypeMixPair:
		if err := p.ProcessMixPairJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err, "mix pair")
		}

	case queue.JobTypeRenderVisuals:
		if err := p.ProcessRenderVisualsJob(ctx, job); err != nil {
			// Visuals are best effort, don't retry
			if nackErr := msg.Nack(false); nackErr != nil {
				log.Printf("Failed to nack visuals job: %v", nackErr)
			}
			return fmt.Errorf("visuals render failed: %w", err)
		}

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// handleJobError handles errors from job processing with intelligent retry logic
func (p *Pipeline) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error, jobType string) error {
	// Quota errors should not retry immediately
	if planner.IsQuotaError(err) {
		log.Printf("Quota exceeded for %s job %s: %v", jobType, job.ID, err)

		retryDelay := planner.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		log.Printf("Re-enqueueing %s job %s with NotBefore=%v (quota exhausted, retry in %v)",
			jobType, job.ID, notBefore, retryDelay)

		delayedJob := job.WithDelay(notBefore)

		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job before re-enqueue: %v", ackErr)
		}

		if p.jobQueue != nil {
			if enqueueErr := p.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue job %s with delay: %v", job.ID, enqueueErr)
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			log.Printf("Successfully re-enqueued %s job %s for retry at %v", jobType, job.ID, notBefore)
			return nil
		}

		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limit errors retry with backoff
	if planner.IsRateLimitError(err) {
		log.Printf("Rate limited for %s job %s: %v", jobType, job.ID, err)

		retryDelay := planner.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && p.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := job.WithDelay(notBefore)

			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack rate limited job: %v", ackErr)
			}

			if enqueueErr := p.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue rate limited job %s: %v", job.ID, enqueueErr)
				if nackErr := msg.Nack(true); nackErr != nil {
					log.Printf("Failed to nack rate limited job: %v", nackErr)
				}
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			log.Printf("Rate limited: re-enqueued %s job %s for retry at %v (delay: %v)",
				jobType, job.ID, notBefore, retryDelay)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			log.Printf("Rate limit: will retry job %s immediately (attempt %d/%d)",
				job.ID, job.RetryCount, job.MaxRetries)
			if nackErr := msg.Nack(true); nackErr != nil {
				log.Printf("Failed to nack rate limited job: %v", nackErr)
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// Standard retry logic for other errors
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", jobType, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", jobType, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
