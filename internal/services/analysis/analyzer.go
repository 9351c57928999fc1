package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/models"
)

const (
	// SampleRate is the analysis sample rate
	SampleRate = 22050
	// HopLength is the analysis hop size in samples
	HopLength = 512
)

// Cache is the subset of the track cache the analyzer needs
type Cache interface {
	GetAnalysis(ctx context.Context, filePath string) (*models.Analysis, error)
	PutAnalysis(ctx context.Context, filePath string, analysis *models.Analysis) error
}

// Analyzer extracts tempo, key, energy, and mix points from audio files
type Analyzer struct {
	ffmpegPath string
	cache      Cache
	logger     *zap.Logger
}

// New creates an Analyzer. cache may be nil.
func New(ffmpegPath string, analysisCache Cache, log *zap.Logger) *Analyzer {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFfmpegPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		ffmpegPath: ffmpegPath,
		cache:      analysisCache,
		logger:     log,
	}
}

// AnalyzeTrack runs the full analysis pipeline on an audio file
func (a *Analyzer) AnalyzeTrack(ctx context.Context, filePath string) (*models.Analysis, error) {
	if a.cache != nil {
		cached, err := a.cache.GetAnalysis(ctx, filePath)
		if err == nil {
			a.logger.Debug("analysis_cache_hit", zap.String("file", filepath.Base(filePath)))
			return cached, nil
		}
	}

	start := time.Now()

	samples, err := decodeAudio(ctx, a.ffmpegPath, filePath, SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(filePath), err)
	}

	duration := float64(len(samples)) / float64(SampleRate)
	if duration < 1.0 {
		return nil, fmt.Errorf("track too short to analyze: %.2fs", duration)
	}

	envelope := onsetEnvelope(samples, HopLength)
	tempo := estimateTempo(envelope, SampleRate, HopLength)
	beats := trackBeats(envelope, tempo, SampleRate, HopLength)
	energy := energyCurve(samples, SampleRate)

	introEnd := detectIntroEnd(envelope, duration, SampleRate, HopLength)
	outroStart := detectOutroStart(energy, duration)

	key := estimateKey(samples, SampleRate)

	result := &models.Analysis{
		Duration:   duration,
		SampleRate: SampleRate,

		Tempo:        tempo,
		Beats:        beats,
		Downbeats:    downbeatsFromBeats(beats),
		BeatStrength: envelope,

		Key:        key,
		CamelotKey: ToCamelotKey(key),

		EnergyCurve:   energy,
		LoudnessCurve: loudnessCurve(samples, HopLength),

		IntroEnd:     introEnd,
		OutroStart:   outroStart,
		MixInPoints:  findMixInPoints(beats, introEnd, duration),
		MixOutPoints: findMixOutPoints(beats, outroStart, duration),
	}

	result.EnergyLevel = categorizeEnergy(result.EnergyCurve)
	result.Danceability = calculateDanceability(result)
	result.MixDifficulty = assessMixDifficulty(result)
	result.GenreHints = suggestGenres(result)
	result.MoodTags = generateMoodTags(result)

	a.logger.Info("track_analyzed",
		zap.String("file", filepath.Base(filePath)),
		zap.Float64("duration_s", duration),
		zap.Float64("tempo", tempo),
		zap.String("key", key),
		zap.String("camelot_key", result.CamelotKey),
		zap.String("energy_level", string(result.EnergyLevel)),
		zap.Duration("took", time.Since(start)),
	)

	if a.cache != nil {
		if err := a.cache.PutAnalysis(ctx, filePath, result); err != nil {
			a.logger.Warn("analysis_cache_write_failed", zap.Error(err))
		}
	}

	return result, nil
}
