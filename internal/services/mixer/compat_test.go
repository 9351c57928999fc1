package mixer

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/models"
)

func TestCompatibility(t *testing.T) {
	t.Parallel()

	t.Run("perfect match scores ten", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{
			Tempo:        124,
			CamelotKey:   "8A",
			EnergyCurve:  []float64{0.6, 0.6},
			BeatStrength: []float64{1, 1},
			MixOutPoints: []float64{180},
			MixInPoints:  []float64{16},
		}
		b := &models.Analysis{
			Tempo:        124,
			CamelotKey:   "8A",
			EnergyCurve:  []float64{0.6, 0.6},
			BeatStrength: []float64{1, 1},
			MixOutPoints: []float64{170},
			MixInPoints:  []float64{20},
		}

		if got := Compatibility(a, b); got != 10 {
			t.Errorf("Compatibility() = %v, want 10", got)
		}
	})

	t.Run("tempo gap costs points", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{Tempo: 120}

		tests := []struct {
			name   string
			tempoB float64
			want   float64
		}{
			{"within 2 BPM", 121, 3},
			{"within 5 BPM", 124, 2},
			{"within 10 BPM", 129, 1},
			{"beyond 10 BPM", 140, 0},
		}

		for _, tt := range tests {
			b := &models.Analysis{Tempo: tt.tempoB}
			if got := Compatibility(a, b); got != tt.want {
				t.Errorf("%s: Compatibility() = %v, want %v", tt.name, got, tt.want)
			}
		}
	})

	t.Run("missing keys score no key points", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{Tempo: 120}
		b := &models.Analysis{Tempo: 120, CamelotKey: "8A"}

		if got := Compatibility(a, b); got != 3 {
			t.Errorf("Compatibility() = %v, want 3 (tempo only)", got)
		}
	})
}

func TestKeyCompatibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keyA string
		keyB string
		want float64
	}{
		{"same key", "8A", "8A", 2.0},
		{"relative major and minor", "8A", "8B", 2.0},
		{"adjacent up", "8A", "9A", 1.5},
		{"adjacent down", "8A", "7A", 1.5},
		{"wraparound 12 to 1", "12A", "1A", 1.5},
		{"wraparound 1 to 12", "1B", "12B", 1.5},
		{"distant keys", "8A", "3A", 0.5},
		{"adjacent but mixed letter", "8A", "9B", 0.5},
		{"malformed key", "8A", "X", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KeyCompatibility(tt.keyA, tt.keyB); got != tt.want {
				t.Errorf("KeyCompatibility(%q, %q) = %v, want %v", tt.keyA, tt.keyB, got, tt.want)
			}
		})
	}
}

func TestOptimalMixOutPoint(t *testing.T) {
	t.Parallel()

	t.Run("fallback at three quarters", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{Duration: 200}
		if got := OptimalMixOutPoint(a); got != 150 {
			t.Errorf("OptimalMixOutPoint() = %v, want 150", got)
		}
	})

	t.Run("prefers a beat-aligned point in the sweet spot", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{
			Duration:     200,
			MixOutPoints: []float64{30, 140, 195},
			Beats:        []float64{140.02},
		}
		// 140 is at 70% progress and sits on a beat
		if got := OptimalMixOutPoint(a); got != 140 {
			t.Errorf("OptimalMixOutPoint() = %v, want 140", got)
		}
	})
}

func TestOptimalMixInPoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		analysis *models.Analysis
		want     float64
	}{
		{"first mix-in point", &models.Analysis{MixInPoints: []float64{18, 24}}, 18},
		{"intro end fallback", &models.Analysis{IntroEnd: 12}, 12},
		{"hard default", &models.Analysis{}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := OptimalMixInPoint(tt.analysis); got != tt.want {
				t.Errorf("OptimalMixInPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSemitoneShift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		source string
		want   int
	}{
		{"same key", "8A", "8A", 0},
		{"one semitone up", "9A", "8A", 1},
		{"one semitone down", "7A", "8A", -1},
		{"wraps to shorter direction", "1A", "8A", 5},
		{"wraps down", "8A", "1A", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SemitoneShift(tt.target, tt.source); got != tt.want {
				t.Errorf("SemitoneShift(%q, %q) = %d, want %d", tt.target, tt.source, got, tt.want)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	mkTrack := func(tempo float64, key string) *models.Track {
		return &models.Track{
			ID:       uuid.New(),
			Status:   models.TrackStatusReady,
			FilePath: "/tmp/track.mp3",
			Analysis: &models.Analysis{
				Tempo:        tempo,
				CamelotKey:   key,
				EnergyCurve:  []float64{0.5},
				BeatStrength: []float64{1},
			},
		}
	}

	base := mkTrack(124, "8A")

	t.Run("nil base analysis", func(t *testing.T) {
		t.Parallel()

		if got := Recommend(&models.Track{ID: uuid.New()}, nil); got != nil {
			t.Errorf("Recommend() = %v, want nil", got)
		}
	})

	t.Run("skips self and unmixable candidates", func(t *testing.T) {
		t.Parallel()

		pending := mkTrack(124, "8A")
		pending.Status = models.TrackStatusPending

		recs := Recommend(base, []*models.Track{base, pending, mkTrack(124, "8A")})
		if len(recs) != 1 {
			t.Fatalf("len(recs) = %d, want 1", len(recs))
		}
	})

	t.Run("sorted by compatibility and capped at five", func(t *testing.T) {
		t.Parallel()

		candidates := []*models.Track{
			mkTrack(124, "8A"),
			mkTrack(126, "8A"),
			mkTrack(150, "3B"),
			mkTrack(124, "9A"),
			mkTrack(130, "8A"),
			mkTrack(124, "8B"),
			mkTrack(125, "8A"),
		}

		recs := Recommend(base, candidates)
		if len(recs) != 5 {
			t.Fatalf("len(recs) = %d, want 5", len(recs))
		}
		for i := 1; i < len(recs); i++ {
			if recs[i-1].Compatibility < recs[i].Compatibility {
				t.Fatalf("recommendations not sorted: %v then %v",
					recs[i-1].Compatibility, recs[i].Compatibility)
			}
		}
		if math.Abs(recs[0].Compatibility-9) > 1e-9 {
			t.Errorf("best compatibility = %v, want 9 (no mix points available)", recs[0].Compatibility)
		}
	})
}
