package models

import (
	"math"
	"testing"
)

func TestIsMixable(t *testing.T) {
	t.Parallel()

	analysis := &Analysis{Tempo: 120}

	tests := []struct {
		name  string
		track Track
		want  bool
	}{
		{
			name:  "ready analyzed with file",
			track: Track{Status: TrackStatusReady, Analysis: analysis, FilePath: "/tmp/a.mp3"},
			want:  true,
		},
		{
			name:  "not ready",
			track: Track{Status: TrackStatusFetching, Analysis: analysis, FilePath: "/tmp/a.mp3"},
			want:  false,
		},
		{
			name:  "missing analysis",
			track: Track{Status: TrackStatusReady, FilePath: "/tmp/a.mp3"},
			want:  false,
		},
		{
			name:  "missing file",
			track: Track{Status: TrackStatusReady, Analysis: analysis},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.track.IsMixable(); got != tt.want {
				t.Errorf("IsMixable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalysisAverages(t *testing.T) {
	t.Parallel()

	a := &Analysis{
		EnergyCurve:  []float64{0.2, 0.4, 0.6},
		BeatStrength: []float64{1, 3},
	}

	if got := a.AverageEnergy(); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("AverageEnergy() = %v, want 0.4", got)
	}
	if got := a.AverageBeatStrength(); math.Abs(got-2) > 1e-9 {
		t.Errorf("AverageBeatStrength() = %v, want 2", got)
	}

	empty := &Analysis{}
	if got := empty.AverageEnergy(); got != 0 {
		t.Errorf("AverageEnergy() on empty curve = %v, want 0", got)
	}
	if got := empty.AverageBeatStrength(); got != 0 {
		t.Errorf("AverageBeatStrength() on empty curve = %v, want 0", got)
	}
}

func TestValidMixStyle(t *testing.T) {
	t.Parallel()

	for _, style := range []MixStyle{MixStyleSmooth, MixStyleEnergetic, MixStyleDramatic, MixStyleExtended} {
		if !ValidMixStyle(style) {
			t.Errorf("ValidMixStyle(%q) = false, want true", style)
		}
	}

	if ValidMixStyle(MixStyle("aggressive")) {
		t.Error("ValidMixStyle(\"aggressive\") = true, want false")
	}
	if ValidMixStyle(MixStyle("")) {
		t.Error("ValidMixStyle(\"\") = true, want false")
	}
}
