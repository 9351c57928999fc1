package mixer

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// DefaultFfmpegPath is used when no explicit binary path is configured
const DefaultFfmpegPath = "ffmpeg"

// DefaultMaxBPMDiff is the widest tempo gap rendered without forcing a
// tempo adjustment
const DefaultMaxBPMDiff = 10.0

// Mixer renders beat-aware transitions between two tracks using ffmpeg
type Mixer struct {
	ffmpegPath string
	outputDir  string
	maxBPMDiff float64
	logger     *zap.Logger
}

// New creates a Mixer writing rendered transitions to outputDir. maxBPMDiff
// bounds the tempo gap tolerated without adjustment; zero means the default.
func New(ffmpegPath, outputDir string, maxBPMDiff float64, log *zap.Logger) *Mixer {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFfmpegPath
	}
	if maxBPMDiff <= 0 {
		maxBPMDiff = DefaultMaxBPMDiff
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Mixer{
		ffmpegPath: ffmpegPath,
		outputDir:  outputDir,
		maxBPMDiff: maxBPMDiff,
		logger:     log,
	}
}

// RenderResult carries everything the caller needs to persist a rendered mix
type RenderResult struct {
	OutputPath    string
	Compatibility float64
	MixOutPoint   float64
	MixInPoint    float64
	CrossfadeMs   int
	TempoMatched  bool
}

// Render blends track A into track B at their optimal mix points. Both tracks
// must be mixable (downloaded and analyzed).
func (m *Mixer) Render(ctx context.Context, trackA, trackB *models.Track, style models.MixStyle, outputName string) (*RenderResult, error) {
	if !trackA.IsMixable() || !trackB.IsMixable() {
		return nil, fmt.Errorf("both tracks must be fetched and analyzed before mixing")
	}

	analysisA := trackA.Analysis
	analysisB := trackB.Analysis
	cfg := StyleFor(style)

	compatibility := Compatibility(analysisA, analysisB)
	mixOut := OptimalMixOutPoint(analysisA)
	mixIn := OptimalMixInPoint(analysisB)

	crossfadeSec := float64(cfg.CrossfadeMs) / 1000.0

	// Track A plays from its start to shortly past the mix-out point
	aEnd := math.Min(analysisA.Duration, mixOut+crossfadeSec)

	// Track B enters a couple of seconds before its mix-in point
	bStart := math.Max(0, mixIn-2)

	tempoRatio, tempoMatched := tempoAdjustment(analysisA.Tempo, analysisB.Tempo, m.maxBPMDiff, cfg.TempoMatch)

	// Volume balance: boost or cut when the tracks' energies differ a lot
	volumeDB := 0.0
	energyA := analysisA.AverageEnergy()
	energyB := analysisB.AverageEnergy()
	if energyA > 0 && energyB > 0 {
		if energyB < energyA*0.7 {
			volumeDB = 2
		} else if energyB > energyA*1.4 {
			volumeDB = -2
		}
	}

	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	outputPath := filepath.Join(m.outputDir, outputName)

	filter := buildFilter(aEnd, bStart, crossfadeSec, tempoRatio, tempoMatched, volumeDB)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.ffmpegPath,
		"-y",
		"-i", trackA.FilePath,
		"-i", trackB.FilePath,
		"-filter_complex", filter,
		"-map", "[out]",
		"-c:a", "libmp3lame",
		"-b:a", "320k",
		"-v", "error",
		outputPath,
	)
	cmd.Stderr = &stderr

	m.logger.Info("mix_render_start",
		zap.String("track_a", trackA.Title),
		zap.String("track_b", trackB.Title),
		zap.String("style", string(style)),
		zap.Float64("compatibility", compatibility),
		zap.Float64("mix_out_s", mixOut),
		zap.Float64("mix_in_s", mixIn),
		zap.Bool("tempo_matched", tempoMatched),
	)

	start := time.Now()
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[:500] + "..."
		}
		return nil, fmt.Errorf("ffmpeg render failed: %w: %s", err, msg)
	}

	m.logger.Info("mix_render_done",
		zap.String("output", outputPath),
		zap.Duration("took", time.Since(start)),
	)

	return &RenderResult{
		OutputPath:    outputPath,
		Compatibility: compatibility,
		MixOutPoint:   mixOut,
		MixInPoint:    mixIn,
		CrossfadeMs:   cfg.CrossfadeMs,
		TempoMatched:  tempoMatched,
	}, nil
}

// tempoAdjustment decides whether B gets tempo-matched to A and by what
// ratio. A gap wider than maxBPMDiff is always corrected; within it the
// style decides, and gaps under 2 BPM are left alone as inaudible.
func tempoAdjustment(tempoA, tempoB, maxBPMDiff float64, styleWantsMatch bool) (float64, bool) {
	if tempoA <= 0 || tempoB <= 0 {
		return 1.0, false
	}

	gap := math.Abs(tempoA - tempoB)
	if gap <= maxBPMDiff && (!styleWantsMatch || gap < 2) {
		return 1.0, false
	}

	ratio := tempoA / tempoB
	// atempo accepts 0.5..2.0 per stage
	ratio = math.Max(0.5, math.Min(2.0, ratio))
	return ratio, true
}

// buildFilter assembles the ffmpeg filter graph: trim both tracks, optionally
// tempo-match B, crossfade, then balance volume
func buildFilter(aEnd, bStart, crossfadeSec, tempoRatio float64, tempoMatched bool, volumeDB float64) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[0:a]atrim=0:%.3f,asetpts=PTS-STARTPTS[a];", aEnd)

	fmt.Fprintf(&sb, "[1:a]atrim=start=%.3f,asetpts=PTS-STARTPTS", bStart)
	if tempoMatched {
		fmt.Fprintf(&sb, ",atempo=%.4f", tempoRatio)
	}
	sb.WriteString("[b];")

	fmt.Fprintf(&sb, "[a][b]acrossfade=d=%.3f:c1=tri:c2=tri", crossfadeSec)

	if volumeDB != 0 {
		fmt.Fprintf(&sb, "[m];[m]volume=%.1fdB[out]", volumeDB)
	} else {
		sb.WriteString("[out]")
	}

	return sb.String()
}
