package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/queue"
	"github.com/offbeatlabs/mooddj/internal/services/planner"
	"github.com/offbeatlabs/mooddj/internal/session"
)

// ProcessPlanSessionJob asks the planner for an emotional plan and seeds the
// session's track queue from its suggestions
func (p *Pipeline) ProcessPlanSessionJob(ctx context.Context, job *queue.Job) error {
	sess, err := p.sessionRepo.GetByID(ctx, job.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if sess.Status == models.SessionStatusEnded {
		log.Printf("Session %s already ended, skipping plan", sess.ID)
		return nil
	}

	refresh, _ := job.Metadata["refresh"].(bool)

	planCtx := context.WithValue(ctx, planner.SessionIDContextKey(), sess.ID)

	var plan *models.EmotionalPlan
	if refresh && sess.Plan != nil {
		playedTitles, err := p.playedTitles(ctx, sess.ID)
		if err != nil {
			return err
		}
		plan, err = p.provider.RefreshPlan(planCtx, sess.Prompt, sess.Plan, playedTitles)
		if err != nil {
			return fmt.Errorf("failed to refresh plan: %w", err)
		}
	} else {
		plan, err = p.provider.PlanSession(planCtx, sess.Prompt)
		if err != nil {
			return fmt.Errorf("failed to plan session: %w", err)
		}
	}

	sess.Plan = plan
	sess.Status = models.SessionStatusActive
	if err := p.sessionRepo.Update(ctx, sess); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	// Seed the queue, skipping suggestions that already have a track
	existing, err := p.trackRepo.GetBySessionID(ctx, sess.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t.Query] = true
	}

	created := 0
	for _, suggestion := range plan.MusicSuggestions {
		if known[suggestion] {
			continue
		}

		track := &models.Track{
			ID:        uuid.New(),
			SessionID: sess.ID,
			Query:     suggestion,
			Title:     suggestion,
			Status:    models.TrackStatusPending,
		}
		if err := p.trackRepo.Create(ctx, track); err != nil {
			return fmt.Errorf("failed to create track: %w", err)
		}

		fetchJob := queue.NewJob(queue.JobTypeFetchTrack, sess.ID, &track.ID)
		if err := p.jobQueue.Enqueue(ctx, fetchJob); err != nil {
			return fmt.Errorf("failed to enqueue fetch job: %w", err)
		}
		created++
	}

	visualsJob := queue.NewJob(queue.JobTypeRenderVisuals, sess.ID, nil)
	if err := p.jobQueue.Enqueue(ctx, visualsJob); err != nil {
		log.Printf("Failed to enqueue visuals job for session %s: %v", sess.ID, err)
	}

	log.Printf("Planned session %s: %s -> %s, curve=%v, %d new tracks queued",
		sess.ID, plan.CurrentEmotion, plan.TargetEmotion, plan.MoodCurve, created)
	return nil
}

// ProcessFetchTrackJob downloads one suggested track
func (p *Pipeline) ProcessFetchTrackJob(ctx context.Context, job *queue.Job) error {
	if job.TrackID == nil {
		return fmt.Errorf("track_id is required for fetch job")
	}

	track, err := p.trackRepo.GetByID(ctx, *job.TrackID)
	if err != nil {
		return fmt.Errorf("failed to get track: %w", err)
	}

	if track.Status == models.TrackStatusReady || track.Status == models.TrackStatusAnalyzing {
		log.Printf("Track %s already fetched, skipping", track.ID)
		return nil
	}

	track.Status = models.TrackStatusFetching
	if err := p.trackRepo.Update(ctx, track); err != nil {
		return fmt.Errorf("failed to update track status: %w", err)
	}

	result, err := p.fetcher.Fetch(ctx, track.Query)
	if err != nil {
		// Reset so a retry can pick it up again
		track.Status = models.TrackStatusPending
		if updateErr := p.trackRepo.Update(ctx, track); updateErr != nil {
			log.Printf("Failed to reset track status after fetch error: %v", updateErr)
		}
		return fmt.Errorf("failed to fetch track: %w", err)
	}

	track.Title = result.Title
	track.Artist = result.Artist
	track.VideoID = result.VideoID
	track.SourceURL = result.SourceURL
	track.Duration = result.Duration
	track.FilePath = result.FilePath
	track.Status = models.TrackStatusAnalyzing
	if err := p.trackRepo.Update(ctx, track); err != nil {
		return fmt.Errorf("failed to save fetched track: %w", err)
	}

	analyzeJob := queue.NewJob(queue.JobTypeAnalyzeTrack, track.SessionID, &track.ID)
	if err := p.jobQueue.Enqueue(ctx, analyzeJob); err != nil {
		return fmt.Errorf("failed to enqueue analyze job: %w", err)
	}

	log.Printf("Fetched track %s: %q by %q", track.ID, track.Title, track.Artist)
	return nil
}

// ProcessAnalyzeTrackJob runs audio analysis on a fetched track
func (p *Pipeline) ProcessAnalyzeTrackJob(ctx context.Context, job *queue.Job) error {
	if job.TrackID == nil {
		return fmt.Errorf("track_id is required for analyze job")
	}

	track, err := p.trackRepo.GetByID(ctx, *job.TrackID)
	if err != nil {
		return fmt.Errorf("failed to get track: %w", err)
	}

	if track.FilePath == "" {
		return fmt.Errorf("track %s has no file to analyze", track.ID)
	}

	analysis, err := p.analyzer.AnalyzeTrack(ctx, track.FilePath)
	if err != nil {
		return fmt.Errorf("failed to analyze track: %w", err)
	}

	track.Analysis = analysis
	if track.Duration == 0 {
		track.Duration = analysis.Duration
	}
	track.Status = models.TrackStatusReady
	if err := p.trackRepo.Update(ctx, track); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	log.Printf("Analyzed track %s: tempo=%.1f key=%s energy=%s",
		track.ID, analysis.Tempo, analysis.CamelotKey, analysis.EnergyLevel)

	// Each newly ready track is a chance to render the next transition
	mixJob := queue.NewJob(queue.JobTypeMixPair, track.SessionID, nil)
	if err := p.jobQueue.Enqueue(ctx, mixJob); err != nil {
		return fmt.Errorf("failed to enqueue mix job: %w", err)
	}

	return nil
}

// ProcessMixPairJob selects the session's next track pair and renders the
// transition. Skips quietly when too few tracks are ready yet.
func (p *Pipeline) ProcessMixPairJob(ctx context.Context, job *queue.Job) error {
	sess, err := p.sessionRepo.GetByID(ctx, job.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if sess.Status != models.SessionStatusActive || sess.Plan == nil {
		log.Printf("Session %s not active, skipping mix", sess.ID)
		return nil
	}

	tracks, err := p.trackRepo.GetBySessionID(ctx, sess.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	playlist, played := playbackState(tracks)

	var trackA *models.Track
	if len(played) == 0 {
		trackA = session.SelectOpeningTrack(tracks, sess.Plan.CurrentEmotion)
		if trackA == nil {
			log.Printf("Session %s has no analyzed tracks yet, skipping mix", sess.ID)
			return nil
		}
		if err := p.trackRepo.MarkPlayed(ctx, trackA.ID); err != nil {
			return fmt.Errorf("failed to mark opening track played: %w", err)
		}
		trackA.Played = true
		playlist.Add(trackA.ID)
		log.Printf("Session %s opening with %q", sess.ID, trackA.Title)
	} else {
		trackA = played[len(played)-1]
	}

	targetEmotion := sess.Plan.CurveEmotion(playlist.Len())
	candidate := session.SelectNextTrack(trackA, unplayedTracks(tracks), targetEmotion, playlist)
	if candidate == nil {
		log.Printf("Session %s has no suitable next track yet, skipping mix", sess.ID)
		return nil
	}
	trackB := candidate.Track

	style := models.MixStyleSmooth
	if s, ok := job.Metadata["style"].(string); ok && models.ValidMixStyle(models.MixStyle(s)) {
		style = models.MixStyle(s)
	}

	mix := &models.Mix{
		ID:        uuid.New(),
		SessionID: sess.ID,
		TrackAID:  trackA.ID,
		TrackBID:  trackB.ID,
		Style:     style,
		Status:    models.MixStatusRendering,
	}
	if err := p.mixRepo.Create(ctx, mix); err != nil {
		return fmt.Errorf("failed to create mix: %w", err)
	}

	result, err := p.mixer.Render(ctx, trackA, trackB, style, fmt.Sprintf("mix_%s.mp3", mix.ID))
	if err != nil {
		mix.Status = models.MixStatusFailed
		if updateErr := p.mixRepo.Update(ctx, mix); updateErr != nil {
			log.Printf("Failed to mark mix failed: %v", updateErr)
		}
		return fmt.Errorf("failed to render mix: %w", err)
	}

	mix.Compatibility = result.Compatibility
	mix.MixOutPoint = result.MixOutPoint
	mix.MixInPoint = result.MixInPoint
	mix.CrossfadeMs = result.CrossfadeMs
	mix.TempoMatched = result.TempoMatched
	mix.OutputPath = result.OutputPath
	mix.Status = models.MixStatusDone
	if err := p.mixRepo.Update(ctx, mix); err != nil {
		return fmt.Errorf("failed to save mix: %w", err)
	}

	if err := p.trackRepo.MarkPlayed(ctx, trackB.ID); err != nil {
		return fmt.Errorf("failed to mark track played: %w", err)
	}

	log.Printf("Mixed %q -> %q (style=%s, compatibility=%.1f, emotion=%s)",
		trackA.Title, trackB.Title, style, result.Compatibility, targetEmotion)

	visualsJob := queue.NewJob(queue.JobTypeRenderVisuals, sess.ID, nil)
	if err := p.jobQueue.Enqueue(ctx, visualsJob); err != nil {
		log.Printf("Failed to enqueue visuals job for session %s: %v", sess.ID, err)
	}

	return nil
}

// ProcessRenderVisualsJob renders mood frames for the session's current
// visual window
func (p *Pipeline) ProcessRenderVisualsJob(ctx context.Context, job *queue.Job) error {
	sess, err := p.sessionRepo.GetByID(ctx, job.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if sess.Plan == nil {
		log.Printf("Session %s has no plan yet, skipping visuals", sess.ID)
		return nil
	}

	tracks, err := p.trackRepo.GetBySessionID(ctx, sess.ID, nil)
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}
	playlist, _ := playbackState(tracks)

	moods := sess.Plan.VisualWindow(playlist.Len())
	paths, err := p.visuals.RenderMoodFrames(moods, sess.Plan.VisualStyle)
	if err != nil {
		return fmt.Errorf("failed to render visuals: %w", err)
	}

	log.Printf("Rendered %d visual frames for session %s (window=%v)", len(paths), sess.ID, moods)
	return nil
}

// playedTitles lists titles of tracks that already played in a session
func (p *Pipeline) playedTitles(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	tracks, err := p.trackRepo.GetBySessionID(ctx, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	var titles []string
	for _, t := range tracks {
		if t.Played {
			titles = append(titles, t.Title)
		}
	}
	return titles, nil
}

// unplayedTracks returns the tracks still eligible for selection. A played
// track never reenters the pool.
func unplayedTracks(tracks []*models.Track) []*models.Track {
	var fresh []*models.Track
	for _, t := range tracks {
		if !t.Played {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

// playbackState rebuilds the playlist and the played tracks, ordered by when
// they were marked played
func playbackState(tracks []*models.Track) (*session.Playlist, []*models.Track) {
	var played []*models.Track
	for _, t := range tracks {
		if t.Played {
			played = append(played, t)
		}
	}

	// Play order follows update time: MarkPlayed touches updated_at
	for i := 1; i < len(played); i++ {
		for j := i; j > 0 && played[j].UpdatedAt.Before(played[j-1].UpdatedAt); j-- {
			played[j], played[j-1] = played[j-1], played[j]
		}
	}

	playlist := session.NewPlaylist()
	for _, t := range played {
		playlist.Add(t.ID)
	}
	return playlist, played
}
