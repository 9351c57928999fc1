package models

import (
	"time"

	"github.com/google/uuid"
)

// Intensity represents the visual intensity requested by the planner
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// VisualStyle describes how session visuals should look
type VisualStyle struct {
	ColorPalette []string  `json:"color_palette"`
	MotionType   string    `json:"motion_type"`
	Intensity    Intensity `json:"intensity"`
}

// Normalize clamps unknown intensities to medium
func (v *VisualStyle) Normalize() {
	switch v.Intensity {
	case IntensityLow, IntensityMedium, IntensityHigh:
	default:
		v.Intensity = IntensityMedium
	}
}

// EmotionalPlan is the planner's structured answer to a mood prompt.
// It drives track sourcing, pair selection, and visual rendering.
type EmotionalPlan struct {
	CurrentEmotion    string      `json:"current_emotion"`
	TargetEmotion     string      `json:"target_emotion"`
	MoodCurve         []string    `json:"mood_curve"`
	MusicSuggestions  []string    `json:"music_suggestions"`
	VisualStyle       VisualStyle `json:"visual_style"`
}

// CurveEmotion returns the mood-curve entry for a given progression through
// the session (playedTracks relative to the curve length). An empty curve
// falls back to the target emotion.
func (p *EmotionalPlan) CurveEmotion(playedTracks int) string {
	if len(p.MoodCurve) == 0 {
		if p.TargetEmotion != "" {
			return p.TargetEmotion
		}
		return "happy"
	}

	progress := float64(playedTracks) / float64(len(p.MoodCurve))
	if progress > 1.0 {
		progress = 1.0
	}

	idx := 0
	if len(p.MoodCurve) > 1 {
		idx = int(progress * float64(len(p.MoodCurve)-1))
	}
	return p.MoodCurve[idx]
}

// VisualWindow returns the current mood plus up to the next two, so visual
// transitions can be prepared ahead of the music.
func (p *EmotionalPlan) VisualWindow(playedTracks int) []string {
	if len(p.MoodCurve) == 0 {
		return []string{"ambient"}
	}

	progress := float64(playedTracks) / float64(len(p.MoodCurve))
	if progress > 1.0 {
		progress = 1.0
	}
	start := int(progress * float64(len(p.MoodCurve)-1))

	end := start + 3
	if end > len(p.MoodCurve) {
		end = len(p.MoodCurve)
	}

	window := make([]string, 0, end-start)
	window = append(window, p.MoodCurve[start:end]...)
	if len(window) == 0 {
		return []string{"ambient"}
	}
	return window
}

// PromptChange records a user redirecting the emotional journey mid-session
type PromptChange struct {
	OldPrompt string    `json:"old_prompt"`
	NewPrompt string    `json:"new_prompt"`
	AtTrack   int       `json:"at_track"`
	ChangedAt time.Time `json:"changed_at"`
}

// SessionStatus represents the lifecycle of a session
type SessionStatus string

const (
	SessionStatusPlanning SessionStatus = "planning"
	SessionStatusActive   SessionStatus = "active"
	SessionStatusEnded    SessionStatus = "ended"
)

// Session is one emotional mix journey for a single prompt
type Session struct {
	ID            uuid.UUID      `json:"id"`
	Prompt        string         `json:"prompt"`
	Status        SessionStatus  `json:"status"`
	Plan          *EmotionalPlan `json:"plan,omitempty"`
	PromptHistory []PromptChange `json:"prompt_history,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	EndedAt       *time.Time     `json:"ended_at,omitempty"`
}
