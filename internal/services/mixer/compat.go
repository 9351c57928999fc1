package mixer

import (
	"math"
	"sort"
	"strconv"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// Compatibility scores how well two analyzed tracks will mix, on a 0-10 scale
func Compatibility(a, b *models.Analysis) float64 {
	var score float64

	// Tempo compatibility (0-3 points)
	tempoDiff := math.Abs(a.Tempo - b.Tempo)
	switch {
	case tempoDiff <= 2:
		score += 3
	case tempoDiff <= 5:
		score += 2
	case tempoDiff <= 10:
		score += 1
	}

	// Key compatibility (0-2 points)
	if a.CamelotKey != "" && b.CamelotKey != "" {
		score += KeyCompatibility(a.CamelotKey, b.CamelotKey)
	}

	// Energy compatibility (0-2 points)
	score += ratio(a.AverageEnergy(), b.AverageEnergy()) * 2

	// Beat strength compatibility (0-2 points)
	score += ratio(a.AverageBeatStrength(), b.AverageBeatStrength()) * 2

	// Mix point availability (0-1 point)
	if len(a.MixOutPoints) > 0 && len(b.MixInPoints) > 0 {
		score += 1
	}

	return math.Min(score, 10.0)
}

// KeyCompatibility scores two Camelot keys by wheel adjacency rules
func KeyCompatibility(keyA, keyB string) float64 {
	if keyA == keyB {
		return 2.0
	}

	if len(keyA) < 2 || len(keyB) < 2 {
		return 0.5
	}

	numA, errA := strconv.Atoi(keyA[:len(keyA)-1])
	numB, errB := strconv.Atoi(keyB[:len(keyB)-1])
	if errA != nil || errB != nil {
		return 0.5
	}
	letterA := keyA[len(keyA)-1]
	letterB := keyB[len(keyB)-1]

	diff := numA - numB
	if diff < 0 {
		diff = -diff
	}

	switch {
	case numA == numB && letterA != letterB:
		// Relative major/minor
		return 2.0
	case letterA == letterB && (diff == 1 || diff == 11):
		// Adjacent on the wheel (11 is the 12-to-1 wraparound)
		return 1.5
	default:
		return 0.5
	}
}

// OptimalMixOutPoint picks the best point to start mixing out of track A
func OptimalMixOutPoint(a *models.Analysis) float64 {
	if len(a.MixOutPoints) == 0 {
		return a.Duration * 0.75
	}

	bestPoint := a.MixOutPoints[0]
	bestScore := 0

	for _, point := range a.MixOutPoints {
		score := 0

		// Prefer the latter half but not too late
		progress := point / a.Duration
		switch {
		case progress >= 0.6 && progress <= 0.8:
			score += 2
		case progress >= 0.5 && progress <= 0.9:
			score += 1
		}

		// Prefer points sitting on a beat
		if len(a.Beats) > 0 {
			closest := math.Inf(1)
			for _, beat := range a.Beats {
				if d := math.Abs(beat - point); d < closest {
					closest = d
				}
			}
			if closest < 0.1 {
				score++
			}
		}

		if score > bestScore {
			bestScore = score
			bestPoint = point
		}
	}

	return bestPoint
}

// OptimalMixInPoint picks the best point to start mixing in track B
func OptimalMixInPoint(b *models.Analysis) float64 {
	if len(b.MixInPoints) == 0 {
		if b.IntroEnd > 0 {
			return b.IntroEnd
		}
		return 8.0
	}
	return b.MixInPoints[0]
}

// SemitoneShift calculates the pitch shift that would move keySource to
// keyTarget, wrapped to the shorter direction around the circle
func SemitoneShift(keyTarget, keySource string) int {
	keyMap := map[string]int{
		"1A": 0, "1B": 3, "2A": 1, "2B": 4, "3A": 2, "3B": 5,
		"4A": 3, "4B": 6, "5A": 4, "5B": 7, "6A": 5, "6B": 8,
		"7A": 6, "7B": 9, "8A": 7, "8B": 10, "9A": 8, "9B": 11,
		"10A": 9, "10B": 0, "11A": 10, "11B": 1, "12A": 11, "12B": 2,
	}

	shift := keyMap[keyTarget] - keyMap[keySource]
	if shift > 6 {
		shift -= 12
	} else if shift < -6 {
		shift += 12
	}
	return shift
}

// Recommendation pairs a candidate track with its compatibility details
type Recommendation struct {
	Track         *models.Track `json:"track"`
	Compatibility float64       `json:"compatibility"`
	TempoDiff     float64       `json:"tempo_diff"`
	KeyMatch      float64       `json:"key_match"`
	EnergyRatio   float64       `json:"energy_ratio"`
}

// Recommend scores mixable candidates against a base track and returns the
// top five by compatibility
func Recommend(base *models.Track, candidates []*models.Track) []Recommendation {
	if base == nil || base.Analysis == nil {
		return nil
	}

	var recs []Recommendation
	for _, c := range candidates {
		if c.ID == base.ID || !c.IsMixable() {
			continue
		}

		rec := Recommendation{
			Track:         c,
			Compatibility: Compatibility(base.Analysis, c.Analysis),
			TempoDiff:     math.Abs(base.Analysis.Tempo - c.Analysis.Tempo),
			EnergyRatio:   ratio(base.Analysis.AverageEnergy(), c.Analysis.AverageEnergy()),
		}
		if base.Analysis.CamelotKey != "" && c.Analysis.CamelotKey != "" {
			rec.KeyMatch = KeyCompatibility(base.Analysis.CamelotKey, c.Analysis.CamelotKey)
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Compatibility > recs[j].Compatibility
	})

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

// ratio returns min/max of two non-negative values, or 0 when either is 0
func ratio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a < b {
		return a / b
	}
	return b / a
}
