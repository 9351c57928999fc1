package session

import (
	"math"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// TempoProgression summarizes tempo movement through the session
type TempoProgression struct {
	StartTempo    float64 `json:"start_tempo"`
	CurrentTempo  float64 `json:"current_tempo"`
	AverageChange float64 `json:"average_change"`
	BiggestJump   float64 `json:"biggest_jump"`
	Smoothness    float64 `json:"smoothness"`
}

// EnergyProgression summarizes energy movement through the session
type EnergyProgression struct {
	StartEnergy   models.EnergyLevel `json:"start_energy"`
	CurrentEnergy models.EnergyLevel `json:"current_energy"`
	EnergyArc     []int              `json:"energy_arc"`
	Trend         string             `json:"trend"`
}

// Stats is the session's journey summary
type Stats struct {
	TracksPlayed    int                `json:"tracks_played"`
	CurrentEmotion  string             `json:"current_emotion,omitempty"`
	TargetEmotion   string             `json:"target_emotion,omitempty"`
	AverageMixScore float64            `json:"average_mix_score"`
	MoodConsistency float64            `json:"mood_consistency"`
	Tempo           *TempoProgression  `json:"tempo_progression,omitempty"`
	Energy          *EnergyProgression `json:"energy_progression,omitempty"`
}

var energyRank = map[models.EnergyLevel]int{
	models.EnergyVeryLow: 1,
	models.EnergyLow:     2,
	models.EnergyMedium:  3,
	models.EnergyHigh:    4,
}

// ComputeStats derives session statistics from the played tracks (in play
// order) and the compatibility scores of rendered mixes
func ComputeStats(played []*models.Track, plan *models.EmotionalPlan, mixScores []float64) *Stats {
	stats := &Stats{
		TracksPlayed: len(played),
	}
	if plan != nil {
		stats.CurrentEmotion = plan.CurrentEmotion
		stats.TargetEmotion = plan.TargetEmotion
	}

	if len(mixScores) > 0 {
		var sum float64
		for _, s := range mixScores {
			sum += s
		}
		stats.AverageMixScore = sum / float64(len(mixScores))
	}

	analyzed := make([]*models.Track, 0, len(played))
	for _, t := range played {
		if t.Analysis != nil {
			analyzed = append(analyzed, t)
		}
	}

	stats.MoodConsistency = moodConsistency(analyzed)
	stats.Tempo = tempoProgression(analyzed)
	stats.Energy = energyProgression(analyzed)

	return stats
}

// tempoProgression needs at least two analyzed tracks
func tempoProgression(tracks []*models.Track) *TempoProgression {
	if len(tracks) < 2 {
		return nil
	}

	tempos := make([]float64, len(tracks))
	for i, t := range tracks {
		tempos[i] = t.Analysis.Tempo
	}

	changes := make([]float64, len(tempos)-1)
	var sum, biggest float64
	for i := range changes {
		changes[i] = tempos[i+1] - tempos[i]
		sum += changes[i]
		if abs := math.Abs(changes[i]); abs > biggest {
			biggest = abs
		}
	}

	return &TempoProgression{
		StartTempo:    tempos[0],
		CurrentTempo:  tempos[len(tempos)-1],
		AverageChange: sum / float64(len(changes)),
		BiggestJump:   biggest,
		Smoothness:    smoothness(changes),
	}
}

func energyProgression(tracks []*models.Track) *EnergyProgression {
	if len(tracks) < 2 {
		return nil
	}

	arc := make([]int, len(tracks))
	for i, t := range tracks {
		rank, ok := energyRank[t.Analysis.EnergyLevel]
		if !ok {
			rank = 3
		}
		arc[i] = rank
	}

	trend := "stable"
	if arc[len(arc)-1] > arc[0] {
		trend = "increasing"
	} else if arc[len(arc)-1] < arc[0] {
		trend = "decreasing"
	}

	return &EnergyProgression{
		StartEnergy:   tracks[0].Analysis.EnergyLevel,
		CurrentEnergy: tracks[len(tracks)-1].Analysis.EnergyLevel,
		EnergyArc:     arc,
		Trend:         trend,
	}
}

// moodConsistency is the mean Jaccard overlap between consecutive tracks' mood tags
func moodConsistency(tracks []*models.Track) float64 {
	if len(tracks) < 2 {
		return 1.0
	}

	var total float64
	pairs := 0
	for i := 0; i < len(tracks)-1; i++ {
		total += jaccard(tracks[i].Analysis.MoodTags, tracks[i+1].Analysis.MoodTags)
		pairs++
	}

	return total / float64(pairs)
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}

	setB := make(map[string]bool, len(b))
	intersection := 0
	for _, s := range b {
		if setB[s] {
			continue
		}
		setB[s] = true
		if setA[s] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// smoothness maps change variance to a 0-1 scale where 1 is smoothest
func smoothness(changes []float64) float64 {
	if len(changes) == 0 {
		return 1.0
	}

	var sum float64
	for _, c := range changes {
		sum += c
	}
	avg := sum / float64(len(changes))

	var variance float64
	for _, c := range changes {
		d := c - avg
		variance += d * d
	}
	variance /= float64(len(changes))

	return 1 / (1 + variance/100)
}
