package session

import (
	"strings"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// EmotionProfile describes the musical character a given emotion calls for
type EmotionProfile struct {
	Energy   models.EnergyLevel
	TempoMin float64
	TempoMax float64
	Moods    []string
}

// emotionMappings translates listener emotions to musical targets. Unknown
// emotions fall back to the focused profile.
var emotionMappings = map[string]EmotionProfile{
	"tired":     {Energy: models.EnergyLow, TempoMin: 60, TempoMax: 100, Moods: []string{"calm", "relaxed", "chill"}},
	"sad":       {Energy: models.EnergyLow, TempoMin: 60, TempoMax: 90, Moods: []string{"melancholic", "emotional", "slow"}},
	"happy":     {Energy: models.EnergyHigh, TempoMin: 110, TempoMax: 140, Moods: []string{"upbeat", "positive", "bright"}},
	"energetic": {Energy: models.EnergyHigh, TempoMin: 120, TempoMax: 160, Moods: []string{"energetic", "uplifting", "fast"}},
	"focused":   {Energy: models.EnergyMedium, TempoMin: 90, TempoMax: 120, Moods: []string{"moderate", "balanced"}},
	"relaxed":   {Energy: models.EnergyLow, TempoMin: 70, TempoMax: 110, Moods: []string{"calm", "chill", "relaxed"}},
	"excited":   {Energy: models.EnergyHigh, TempoMin: 130, TempoMax: 180, Moods: []string{"party", "energetic", "uplifting"}},
}

// highEnergyEmotions get a danceability bonus during scoring
var highEnergyEmotions = map[string]bool{
	"happy":     true,
	"energetic": true,
	"excited":   true,
}

// ProfileFor returns the emotion profile for an emotion, falling back to focused
func ProfileFor(emotion string) EmotionProfile {
	if profile, ok := emotionMappings[strings.ToLower(emotion)]; ok {
		return profile
	}
	return emotionMappings["focused"]
}

// ScoreTrackForEmotion scores how well an analyzed track matches an emotion.
// Unanalyzed tracks score zero.
func ScoreTrackForEmotion(track *models.Track, emotion string) float64 {
	if track.Analysis == nil {
		return 0
	}

	emotion = strings.ToLower(emotion)
	profile := ProfileFor(emotion)
	a := track.Analysis

	var score float64

	// Energy level match
	if a.EnergyLevel == profile.Energy {
		score += 3.0
	} else if isAdjacentEnergy(a.EnergyLevel, profile.Energy) {
		score += 1.5
	}

	// Tempo match
	if a.Tempo >= profile.TempoMin && a.Tempo <= profile.TempoMax {
		score += 2.0
	} else if a.Tempo >= profile.TempoMin-20 && a.Tempo <= profile.TempoMax+20 {
		score += 1.0
	}

	// Mood tags match
	tags := make(map[string]bool, len(a.MoodTags))
	for _, t := range a.MoodTags {
		tags[t] = true
	}
	for _, mood := range profile.Moods {
		if tags[mood] {
			score += 1.0
		}
	}

	// Danceability bonus for high-energy emotions
	if highEnergyEmotions[emotion] && a.Danceability > 0.7 {
		score += 1.0
	}

	return score
}

// isAdjacentEnergy reports whether one level is medium and the other is low or high
func isAdjacentEnergy(a, b models.EnergyLevel) bool {
	outer := func(l models.EnergyLevel) bool {
		return l == models.EnergyLow || l == models.EnergyHigh
	}
	return (a == models.EnergyMedium && outer(b)) || (b == models.EnergyMedium && outer(a))
}
