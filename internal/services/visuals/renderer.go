package visuals

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/models"
)

const (
	// Width and Height of rendered mood frames
	Width  = 1000
	Height = 600
)

// Renderer draws abstract mood frames for a session's visual window
type Renderer struct {
	outputDir string
	logger    *zap.Logger
}

// New creates a Renderer writing frames to outputDir
func New(outputDir string, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{outputDir: outputDir, logger: log}
}

// RenderMoodFrames draws one frame per mood in the window, styled by the
// plan's visual style, and returns the written file paths. Frames are seeded
// by index so re-rendering a window is repeatable.
func (r *Renderer) RenderMoodFrames(moods []string, style models.VisualStyle) ([]string, error) {
	if len(moods) == 0 {
		moods = []string{"ambient"}
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create visuals dir: %w", err)
	}

	palette := parsePalette(style.ColorPalette)

	paths := make([]string, 0, len(moods))
	for i, mood := range moods {
		dc := gg.NewContext(Width, Height)
		rng := rand.New(rand.NewSource(int64(i)))

		drawBackground(dc, palette, style.Intensity)

		switch mood {
		case "calm":
			drawCalm(dc, palette, rng)
		case "intense":
			drawIntense(dc, palette, rng, style.Intensity)
		case "uplifting":
			drawUplifting(dc, palette, rng)
		default:
			drawTextCard(dc, mood, palette)
		}

		outFile := filepath.Join(r.outputDir, fmt.Sprintf("%d_%s.png", i, mood))
		if err := dc.SavePNG(outFile); err != nil {
			return nil, fmt.Errorf("failed to save frame %d: %w", i, err)
		}
		paths = append(paths, outFile)

		r.logger.Debug("visual_frame_rendered",
			zap.Int("index", i),
			zap.String("mood", mood),
			zap.String("path", outFile),
		)
	}

	return paths, nil
}

type color struct{ r, g, b float64 }

var namedColors = map[string]color{
	"skyblue": {0.53, 0.81, 0.92},
	"blue":    {0.2, 0.3, 0.8},
	"red":     {0.86, 0.2, 0.18},
	"orange":  {0.95, 0.55, 0.15},
	"purple":  {0.55, 0.25, 0.7},
	"green":   {0.2, 0.7, 0.4},
	"pink":    {0.95, 0.45, 0.65},
	"yellow":  {0.95, 0.85, 0.25},
	"white":   {0.95, 0.95, 0.95},
	"black":   {0.05, 0.05, 0.08},
}

var defaultPalette = []color{
	{0.10, 0.10, 0.18}, // deep night
	{0.91, 0.27, 0.38}, // warm accent
}

// parsePalette accepts "#rrggbb" hex values or common color names
func parsePalette(entries []string) []color {
	var palette []color
	for _, entry := range entries {
		if c, ok := parseHex(entry); ok {
			palette = append(palette, c)
			continue
		}
		if c, ok := namedColors[entry]; ok {
			palette = append(palette, c)
		}
	}
	if len(palette) == 0 {
		palette = defaultPalette
	}
	return palette
}

func parseHex(s string) (color, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color{}, false
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return color{}, false
	}
	return color{float64(rv) / 255, float64(gv) / 255, float64(bv) / 255}, true
}

func drawBackground(dc *gg.Context, palette []color, intensity models.Intensity) {
	bg := palette[0]
	dim := 0.35
	if intensity == models.IntensityHigh {
		dim = 0.55
	} else if intensity == models.IntensityLow {
		dim = 0.2
	}
	dc.SetRGB(bg.r*dim, bg.g*dim, bg.b*dim)
	dc.Clear()
}

// drawCalm layers slow sine ribbons across the frame
func drawCalm(dc *gg.Context, palette []color, rng *rand.Rand) {
	for layer := 0; layer < 4; layer++ {
		c := palette[layer%len(palette)]
		phase := rng.Float64() * 2 * math.Pi
		amp := 40 + rng.Float64()*60
		baseline := Height * (0.3 + 0.15*float64(layer))

		dc.SetRGBA(c.r, c.g, c.b, 0.7)
		dc.SetLineWidth(2 + float64(layer))
		for x := 0.0; x <= Width; x++ {
			t := x / Width * 10
			y := baseline + amp*math.Sin(t+phase)*math.Cos(t/2)
			if x == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
}

// drawIntense fills the frame with jittering vertical bars
func drawIntense(dc *gg.Context, palette []color, rng *rand.Rand, intensity models.Intensity) {
	bars := 50
	if intensity == models.IntensityHigh {
		bars = 80
	}
	barWidth := float64(Width) / float64(bars)

	for i := 0; i < bars; i++ {
		c := palette[rng.Intn(len(palette))]
		// Approximately normal heights so the middle dominates
		h := math.Abs(rng.NormFloat64()) * Height * 0.3
		if h > Height*0.9 {
			h = Height * 0.9
		}
		dc.SetRGBA(c.r, c.g, c.b, 0.7)
		dc.DrawRectangle(float64(i)*barWidth, Height-h, barWidth*0.8, h)
		dc.Fill()
	}
}

// drawUplifting scatters glowing circles of varying size
func drawUplifting(dc *gg.Context, palette []color, rng *rand.Rand) {
	for i := 0; i < 100; i++ {
		c := palette[rng.Intn(len(palette))]
		x := rng.Float64() * Width
		y := rng.Float64() * Height
		radius := 4 + rng.Float64()*36

		dc.SetRGBA(c.r, c.g, c.b, 0.6)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
	}
}

// drawTextCard labels moods with no dedicated style
func drawTextCard(dc *gg.Context, mood string, palette []color) {
	c := palette[len(palette)-1]
	dc.SetRGB(c.r, c.g, c.b)
	dc.DrawStringAnchored(mood, Width/2, Height/2, 0.5, 0.5)
}
