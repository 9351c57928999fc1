package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/services/analysis"
	"github.com/offbeatlabs/mooddj/internal/services/mixer"
	"github.com/offbeatlabs/mooddj/internal/validation"
)

var (
	mixStyle      string
	mixOutputDir  string
	mixMaxBPMDiff float64
)

var mixCmd = &cobra.Command{
	Use:   "mix <track A> <track B>",
	Short: "Render a transition from one audio file into another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.ValidateMixStyle(mixStyle); err != nil {
			return err
		}
		style := models.MixStyle(mixStyle)

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		a := analysis.New(ffmpegPath, nil, log)
		ctx := cmd.Context()

		trackA, err := localTrack(ctx, a, args[0])
		if err != nil {
			return err
		}
		trackB, err := localTrack(ctx, a, args[1])
		if err != nil {
			return err
		}

		m := mixer.New(ffmpegPath, mixOutputDir, mixMaxBPMDiff, log)

		outputName := fmt.Sprintf("%s_into_%s.mp3", baseName(args[0]), baseName(args[1]))
		result, err := m.Render(ctx, trackA, trackB, style, outputName)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}

		return printJSON(result)
	},
}

// localTrack analyzes a file and wraps it as a mixable track
func localTrack(ctx context.Context, a *analysis.Analyzer, path string) (*models.Track, error) {
	result, err := a.AnalyzeTrack(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", path, err)
	}

	return &models.Track{
		ID:       uuid.New(),
		Title:    baseName(path),
		FilePath: path,
		Duration: result.Duration,
		Status:   models.TrackStatusReady,
		Analysis: result,
	}, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func init() {
	mixCmd.Flags().StringVar(&mixStyle, "style", "smooth", "mix style: smooth, energetic, dramatic, or extended")
	mixCmd.Flags().StringVar(&mixOutputDir, "out", "data/mixed", "directory to render into")
	mixCmd.Flags().Float64Var(&mixMaxBPMDiff, "max-bpm-diff", mixer.DefaultMaxBPMDiff, "widest tempo gap rendered without forcing a tempo adjustment")
}
