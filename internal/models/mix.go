package models

import (
	"time"

	"github.com/google/uuid"
)

// MixStyle selects the transition character between two tracks
type MixStyle string

const (
	MixStyleSmooth    MixStyle = "smooth"
	MixStyleEnergetic MixStyle = "energetic"
	MixStyleDramatic  MixStyle = "dramatic"
	MixStyleExtended  MixStyle = "extended"
)

// ValidMixStyle reports whether s is a known mix style
func ValidMixStyle(s MixStyle) bool {
	switch s {
	case MixStyleSmooth, MixStyleEnergetic, MixStyleDramatic, MixStyleExtended:
		return true
	}
	return false
}

// MixStatus represents the lifecycle of a rendered mix
type MixStatus string

const (
	MixStatusRendering MixStatus = "rendering"
	MixStatusDone      MixStatus = "done"
	MixStatusFailed    MixStatus = "failed"
)

// Mix is one rendered transition between two tracks of a session
type Mix struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	TrackAID  uuid.UUID `json:"track_a_id"`
	TrackBID  uuid.UUID `json:"track_b_id"`

	Style         MixStyle  `json:"style"`
	Compatibility float64   `json:"compatibility"`
	MixOutPoint   float64   `json:"mix_out_point"`
	MixInPoint    float64   `json:"mix_in_point"`
	CrossfadeMs   int       `json:"crossfade_ms"`
	TempoMatched  bool      `json:"tempo_matched"`

	OutputPath string    `json:"output_path,omitempty"`
	Status     MixStatus `json:"status"`

	Rating   *int   `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
