package visuals

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/offbeatlabs/mooddj/internal/models"
)

func TestParsePalette(t *testing.T) {
	t.Parallel()

	t.Run("hex entries", func(t *testing.T) {
		t.Parallel()

		palette := parsePalette([]string{"#1a1a2e", "#e94560"})
		if len(palette) != 2 {
			t.Fatalf("len(palette) = %d, want 2", len(palette))
		}
		if math.Abs(palette[0].r-float64(0x1a)/255) > 1e-9 {
			t.Errorf("palette[0].r = %v", palette[0].r)
		}
		if math.Abs(palette[1].g-float64(0x45)/255) > 1e-9 {
			t.Errorf("palette[1].g = %v", palette[1].g)
		}
	})

	t.Run("named colors", func(t *testing.T) {
		t.Parallel()

		palette := parsePalette([]string{"skyblue", "purple"})
		if len(palette) != 2 {
			t.Fatalf("len(palette) = %d, want 2", len(palette))
		}
	})

	t.Run("invalid entries fall back to the default", func(t *testing.T) {
		t.Parallel()

		for _, entries := range [][]string{nil, {"not-a-color"}, {"#12345"}, {"#zzzzzz"}} {
			palette := parsePalette(entries)
			if len(palette) != len(defaultPalette) {
				t.Errorf("parsePalette(%v) = %v, want default", entries, palette)
			}
		}
	})

	t.Run("mixed valid and invalid", func(t *testing.T) {
		t.Parallel()

		palette := parsePalette([]string{"bogus", "#ffffff"})
		if len(palette) != 1 {
			t.Fatalf("len(palette) = %d, want 1", len(palette))
		}
		if palette[0].r != 1 || palette[0].g != 1 || palette[0].b != 1 {
			t.Errorf("palette[0] = %+v, want white", palette[0])
		}
	})
}

func TestRenderMoodFrames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := New(dir, nil)

	style := models.VisualStyle{
		ColorPalette: []string{"#1a1a2e", "#e94560"},
		MotionType:   "fluid",
		Intensity:    models.IntensityMedium,
	}

	moods := []string{"calm", "intense", "uplifting", "nostalgic"}
	paths, err := r.RenderMoodFrames(moods, style)
	if err != nil {
		t.Fatalf("RenderMoodFrames() error: %v", err)
	}
	if len(paths) != len(moods) {
		t.Fatalf("len(paths) = %d, want %d", len(paths), len(moods))
	}

	for i, p := range paths {
		wantName := filepath.Join(dir, filepath.Base(p))
		if p != wantName {
			t.Errorf("frame %d written outside the output dir: %s", i, p)
		}
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("frame %d missing: %v", i, err)
		}
		if info.Size() == 0 {
			t.Errorf("frame %d is empty", i)
		}
	}
}

func TestRenderMoodFramesEmptyWindow(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir(), nil)

	paths, err := r.RenderMoodFrames(nil, models.VisualStyle{})
	if err != nil {
		t.Fatalf("RenderMoodFrames() error: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("len(paths) = %d, want 1 ambient frame", len(paths))
	}
	if filepath.Base(paths[0]) != "0_ambient.png" {
		t.Errorf("frame name = %s, want 0_ambient.png", filepath.Base(paths[0]))
	}
}
