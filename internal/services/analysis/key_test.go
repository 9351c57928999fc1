package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestToCamelotKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"A_minor", "8A"},
		{"C_major", "8B"},
		{"F#_minor", "11A"},
		{"B_major", "1B"},
		{"H_major", "Unknown"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			if got := ToCamelotKey(tt.key); got != tt.want {
				t.Errorf("ToCamelotKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestPearson(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"perfect correlation", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"perfect anticorrelation", []float64{1, 2, 3, 4}, []float64{4, 3, 2, 1}, -1},
		{"zero variance", []float64{1, 1, 1}, []float64{1, 2, 3}, 0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := pearson(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRollProfile(t *testing.T) {
	t.Parallel()

	profile := []float64{1, 2, 3, 4}
	rolled := rollProfile(profile, 1)
	want := []float64{4, 1, 2, 3}
	for i := range want {
		if rolled[i] != want[i] {
			t.Fatalf("rollProfile() = %v, want %v", rolled, want)
		}
	}
}

func TestEstimateKeyPureTone(t *testing.T) {
	t.Parallel()

	// Two seconds of A440: the dominant pitch class must be A
	sampleRate := 8000
	samples := make([]float64, sampleRate*2)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(sampleRate))
	}

	key := estimateKey(samples, sampleRate)
	if !strings.HasPrefix(key, "A_") {
		t.Errorf("estimateKey() = %q, want pitch class A", key)
	}
}

func TestChromaVectorEmpty(t *testing.T) {
	t.Parallel()

	chroma := chromaVector(nil, 8000)
	if len(chroma) != 12 {
		t.Fatalf("len(chroma) = %d, want 12", len(chroma))
	}
	for i, v := range chroma {
		if v != 0 {
			t.Errorf("chroma[%d] = %v, want 0", i, v)
		}
	}
}
