package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackStatus represents where a track is in the fetch/analyze pipeline
type TrackStatus string

const (
	TrackStatusPending   TrackStatus = "pending"
	TrackStatusFetching  TrackStatus = "fetching"
	TrackStatusAnalyzing TrackStatus = "analyzing"
	TrackStatusReady     TrackStatus = "ready"
	TrackStatusFailed    TrackStatus = "failed"
)

// EnergyLevel buckets a track's average energy
type EnergyLevel string

const (
	EnergyVeryLow EnergyLevel = "very_low"
	EnergyLow     EnergyLevel = "low"
	EnergyMedium  EnergyLevel = "medium"
	EnergyHigh    EnergyLevel = "high"
)

// MixDifficulty estimates how hard a track is to blend with another
type MixDifficulty string

const (
	MixDifficultyEasy   MixDifficulty = "easy"
	MixDifficultyMedium MixDifficulty = "medium"
	MixDifficultyHard   MixDifficulty = "hard"
)

// Analysis holds everything the analyzer extracts from a track's audio.
// Times are in seconds from the start of the file.
type Analysis struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`

	Tempo        float64   `json:"tempo"`
	Beats        []float64 `json:"beats"`
	Downbeats    []float64 `json:"downbeats"`
	BeatStrength []float64 `json:"beat_strength"`

	Key        string `json:"key,omitempty"`
	CamelotKey string `json:"camelot_key,omitempty"`

	EnergyCurve   []float64 `json:"energy_curve"`
	LoudnessCurve []float64 `json:"loudness_curve"`

	IntroEnd     float64   `json:"intro_end"`
	OutroStart   float64   `json:"outro_start"`
	MixInPoints  []float64 `json:"mix_in_points"`
	MixOutPoints []float64 `json:"mix_out_points"`

	// Derived metadata used by the session engine
	EnergyLevel   EnergyLevel   `json:"energy_level"`
	Danceability  float64       `json:"danceability"`
	MixDifficulty MixDifficulty `json:"mix_difficulty"`
	GenreHints    []string      `json:"genre_hints,omitempty"`
	MoodTags      []string      `json:"mood_tags,omitempty"`
}

// AverageEnergy returns the mean of the energy curve, or 0 for an empty curve
func (a *Analysis) AverageEnergy() float64 {
	if len(a.EnergyCurve) == 0 {
		return 0
	}
	var sum float64
	for _, e := range a.EnergyCurve {
		sum += e
	}
	return sum / float64(len(a.EnergyCurve))
}

// AverageBeatStrength returns the mean onset strength, or 0 when unknown
func (a *Analysis) AverageBeatStrength() float64 {
	if len(a.BeatStrength) == 0 {
		return 0
	}
	var sum float64
	for _, s := range a.BeatStrength {
		sum += s
	}
	return sum / float64(len(a.BeatStrength))
}

// Track is one sourced piece of audio belonging to a session
type Track struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	Query     string      `json:"query"`
	SourceURL string      `json:"source_url,omitempty"`
	VideoID   string      `json:"video_id,omitempty"`
	Title     string      `json:"title"`
	Artist    string      `json:"artist,omitempty"`
	Duration  float64     `json:"duration"`
	FilePath  string      `json:"file_path,omitempty"`
	Status    TrackStatus `json:"status"`
	Analysis  *Analysis   `json:"analysis,omitempty"`
	Played    bool        `json:"played"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsMixable reports whether the track can take part in pair selection
func (t *Track) IsMixable() bool {
	return t.Status == TrackStatusReady && t.Analysis != nil && t.FilePath != ""
}
