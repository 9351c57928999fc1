package analysis

import (
	"math"
	"testing"

	"github.com/offbeatlabs/mooddj/internal/models"
)

func TestCategorizeEnergy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		energy []float64
		want   models.EnergyLevel
	}{
		{"high", []float64{0.9, 0.9, 0.9}, models.EnergyHigh},
		{"medium", []float64{0.6, 0.6}, models.EnergyMedium},
		{"low", []float64{0.3}, models.EnergyLow},
		{"very low", []float64{0.1}, models.EnergyVeryLow},
		{"empty", nil, models.EnergyVeryLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := categorizeEnergy(tt.energy); got != tt.want {
				t.Errorf("categorizeEnergy() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculateDanceability(t *testing.T) {
	t.Parallel()

	t.Run("ideal dance track", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{
			Tempo:        125,
			BeatStrength: []float64{1, 1, 1, 1},
			EnergyCurve:  []float64{0.9, 0.9, 0.9},
		}
		if got := calculateDanceability(a); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("calculateDanceability() = %v, want 1.0", got)
		}
	})

	t.Run("slow sparse track", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{Tempo: 70}
		if got := calculateDanceability(a); got != 0 {
			t.Errorf("calculateDanceability() = %v, want 0", got)
		}
	})

	t.Run("bounded to 1", func(t *testing.T) {
		t.Parallel()

		a := &models.Analysis{
			Tempo:        128,
			BeatStrength: []float64{2, 2, 2},
			EnergyCurve:  []float64{1, 1, 1},
		}
		if got := calculateDanceability(a); got > 1.0 {
			t.Errorf("calculateDanceability() = %v, want <= 1.0", got)
		}
	})
}

func TestAssessMixDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		analysis *models.Analysis
		want     models.MixDifficulty
	}{
		{
			name: "easy",
			analysis: &models.Analysis{
				Tempo:        120,
				Key:          "A_minor",
				BeatStrength: []float64{1, 1, 1},
				EnergyCurve:  []float64{0.5, 0.5, 0.5},
			},
			want: models.MixDifficultyEasy,
		},
		{
			name: "medium on extreme tempo",
			analysis: &models.Analysis{
				Tempo:        190,
				Key:          "A_minor",
				BeatStrength: []float64{1, 1, 1},
				EnergyCurve:  []float64{0.5, 0.5, 0.5},
			},
			want: models.MixDifficultyMedium,
		},
		{
			name: "hard when everything fights back",
			analysis: &models.Analysis{
				Tempo:        190,
				Key:          "",
				BeatStrength: []float64{0, 2, 0, 2},
				EnergyCurve:  []float64{0, 1.4, 0, 1.4},
			},
			want: models.MixDifficultyHard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := assessMixDifficulty(tt.analysis); got != tt.want {
				t.Errorf("assessMixDifficulty() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuggestGenres(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		analysis *models.Analysis
		want     []string
	}{
		{
			name:     "house and electronic",
			analysis: &models.Analysis{Tempo: 128, EnergyCurve: []float64{0.8, 0.8}},
			want:     []string{"house", "electronic"},
		},
		{
			name:     "chill",
			analysis: &models.Analysis{Tempo: 70, EnergyCurve: []float64{0.3}},
			want:     []string{"chill"},
		},
		{
			name:     "high energy",
			analysis: &models.Analysis{Tempo: 150, EnergyCurve: []float64{0.9}},
			want:     []string{"high_energy"},
		},
		{
			name:     "ambient",
			analysis: &models.Analysis{Tempo: 100, EnergyCurve: []float64{0.3}},
			want:     []string{"ambient"},
		},
		{
			name:     "nothing fits",
			analysis: &models.Analysis{Tempo: 115, EnergyCurve: []float64{0.3}},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := suggestGenres(tt.analysis)
			if got == nil {
				t.Fatal("suggestGenres() returned nil, want a slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("suggestGenres() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("genres[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGenerateMoodTags(t *testing.T) {
	t.Parallel()

	a := &models.Analysis{
		Tempo:       150,
		Key:         "C_major",
		EnergyCurve: []float64{0.9, 0.9},
	}

	moods := generateMoodTags(a)

	wantPresent := []string{"energetic", "uplifting", "party", "fast", "happy", "bright"}
	has := make(map[string]bool, len(moods))
	for _, m := range moods {
		has[m] = true
	}
	for _, w := range wantPresent {
		if !has[w] {
			t.Errorf("mood tags %v missing %q", moods, w)
		}
	}

	for i := 1; i < len(moods); i++ {
		if moods[i-1] >= moods[i] {
			t.Errorf("mood tags not sorted and deduped: %v", moods)
		}
	}
}
