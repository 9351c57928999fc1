package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// categorizeEnergy buckets a track by its average normalized energy
func categorizeEnergy(energy []float64) models.EnergyLevel {
	avg := mean(energy)
	switch {
	case avg > 0.8:
		return models.EnergyHigh
	case avg > 0.5:
		return models.EnergyMedium
	case avg > 0.2:
		return models.EnergyLow
	default:
		return models.EnergyVeryLow
	}
}

// calculateDanceability scores a track 0-1 from tempo, beat consistency, and energy
func calculateDanceability(a *models.Analysis) float64 {
	var score float64

	// Tempo factor, optimal around 120-128 BPM
	switch {
	case a.Tempo >= 110 && a.Tempo <= 140:
		score += 0.3
	case a.Tempo >= 90 && a.Tempo <= 160:
		score += 0.2
	}

	// Beat consistency
	if len(a.BeatStrength) > 0 {
		avg := mean(a.BeatStrength)
		var absDev float64
		for _, s := range a.BeatStrength {
			absDev += math.Abs(s - avg)
		}
		consistency := 1 - absDev/float64(len(a.BeatStrength))
		if consistency > 0 {
			score += consistency * 0.4
		}
	}

	// Energy level
	if len(a.EnergyCurve) > 0 {
		score += math.Min(mean(a.EnergyCurve), 0.3)
	}

	return math.Min(score, 1.0)
}

// assessMixDifficulty estimates how hard a track is to blend with another
func assessMixDifficulty(a *models.Analysis) models.MixDifficulty {
	difficulty := 0

	if a.Tempo < 80 || a.Tempo > 180 {
		difficulty++
	}

	if a.Key == "" || strings.EqualFold(a.Key, "unknown") {
		difficulty++
	}

	if variance(a.BeatStrength) > 0.5 {
		difficulty++
	}

	if variance(a.EnergyCurve) > 0.3 {
		difficulty++
	}

	switch {
	case difficulty == 0:
		return models.MixDifficultyEasy
	case difficulty <= 2:
		return models.MixDifficultyMedium
	default:
		return models.MixDifficultyHard
	}
}

// suggestGenres guesses genres from tempo and energy
func suggestGenres(a *models.Analysis) []string {
	var genres []string
	avgEnergy := mean(a.EnergyCurve)

	if a.Tempo >= 120 && a.Tempo <= 135 && avgEnergy > 0.6 {
		genres = append(genres, "house")
	}
	if a.Tempo >= 128 && a.Tempo <= 140 && avgEnergy > 0.7 {
		genres = append(genres, "electronic")
	}
	if a.Tempo >= 60 && a.Tempo <= 90 {
		genres = append(genres, "chill")
	}
	if a.Tempo > 140 {
		genres = append(genres, "high_energy")
	}
	if a.Tempo >= 90 && a.Tempo <= 110 && avgEnergy < 0.5 {
		genres = append(genres, "ambient")
	}

	if genres == nil {
		genres = []string{}
	}
	return genres
}

// generateMoodTags derives mood tags from energy, tempo, and key
func generateMoodTags(a *models.Analysis) []string {
	seen := make(map[string]bool)
	add := func(tags ...string) {
		for _, t := range tags {
			seen[t] = true
		}
	}

	avgEnergy := mean(a.EnergyCurve)
	switch {
	case avgEnergy > 0.8:
		add("energetic", "uplifting", "party")
	case avgEnergy > 0.6:
		add("upbeat", "positive")
	case avgEnergy > 0.4:
		add("moderate", "balanced")
	default:
		add("calm", "relaxed", "chill")
	}

	if a.Tempo > 140 {
		add("fast")
	} else if a.Tempo < 80 {
		add("slow")
	}

	if strings.Contains(strings.ToLower(a.Key), "minor") {
		add("melancholic", "emotional")
	} else if strings.Contains(strings.ToLower(a.Key), "major") {
		add("happy", "bright")
	}

	moods := make([]string, 0, len(seen))
	for m := range seen {
		moods = append(moods, m)
	}
	sort.Strings(moods)
	return moods
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	avg := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - avg
		sum += d * d
	}
	return sum / float64(len(xs))
}
