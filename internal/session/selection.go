package session

import (
	"math"
	"sort"

	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/services/mixer"
)

const (
	// MixWeight and EmotionWeight balance mix compatibility against emotional fit
	MixWeight     = 0.6
	EmotionWeight = 0.4
)

// Candidate is a scored next-track choice
type Candidate struct {
	Track         *models.Track
	CombinedScore float64
	MixScore      float64
	EmotionScore  float64
}

// SelectOpeningTrack picks the mixable track that best matches the session's
// starting emotion
func SelectOpeningTrack(tracks []*models.Track, currentEmotion string) *models.Track {
	var best *models.Track
	bestScore := math.Inf(-1)

	for _, t := range tracks {
		if !t.IsMixable() {
			continue
		}
		score := ScoreTrackForEmotion(t, currentEmotion)
		if score > bestScore {
			bestScore = score
			best = t
		}
	}

	return best
}

// SelectNextTrack picks the best follow-up to the current track, weighing mix
// compatibility at 60% and emotional fit toward targetEmotion at 40%. The
// playlist's recently played tracks are excluded.
func SelectNextTrack(current *models.Track, candidates []*models.Track, targetEmotion string, playlist *Playlist) *Candidate {
	eligible := make([]*models.Track, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == current.ID {
			continue
		}
		if playlist != nil && playlist.RecentlyPlayed(c.ID) {
			continue
		}
		eligible = append(eligible, c)
	}

	recs := mixer.Recommend(current, eligible)
	if len(recs) == 0 {
		return fallbackSelection(current, eligible, targetEmotion)
	}

	scored := make([]*Candidate, 0, len(recs))
	for _, rec := range recs {
		emotionScore := math.Min(ScoreTrackForEmotion(rec.Track, targetEmotion), 10.0)
		scored = append(scored, &Candidate{
			Track:         rec.Track,
			MixScore:      rec.Compatibility,
			EmotionScore:  emotionScore,
			CombinedScore: rec.Compatibility*MixWeight + emotionScore*EmotionWeight,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].CombinedScore > scored[j].CombinedScore
	})

	return scored[0]
}

// fallbackSelection chooses on emotional fit alone when no mix
// recommendations are available
func fallbackSelection(current *models.Track, candidates []*models.Track, targetEmotion string) *Candidate {
	var best *Candidate

	for _, c := range candidates {
		if !c.IsMixable() || c.ID == current.ID {
			continue
		}
		score := ScoreTrackForEmotion(c, targetEmotion)
		if best == nil || score > best.EmotionScore {
			best = &Candidate{
				Track:         c,
				EmotionScore:  score,
				CombinedScore: score * EmotionWeight,
			}
		}
	}

	return best
}
