package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/services/analysis"
)

var analyzeFull bool

// analysisSummary is the compact default output; beat grids and energy curves
// get long
type analysisSummary struct {
	Duration      float64              `json:"duration"`
	Tempo         float64              `json:"tempo"`
	Key           string               `json:"key"`
	CamelotKey    string               `json:"camelot_key"`
	EnergyLevel   models.EnergyLevel   `json:"energy_level"`
	Danceability  float64              `json:"danceability"`
	MixDifficulty models.MixDifficulty `json:"mix_difficulty"`
	IntroEnd      float64              `json:"intro_end"`
	OutroStart    float64              `json:"outro_start"`
	Beats         int                  `json:"beats"`
	MixInPoints   []float64            `json:"mix_in_points"`
	MixOutPoints  []float64            `json:"mix_out_points"`
	GenreHints    []string             `json:"genre_hints,omitempty"`
	MoodTags      []string             `json:"mood_tags,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio file>",
	Short: "Analyze an audio file's tempo, key, energy, and mix points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		a := analysis.New(ffmpegPath, nil, log)

		result, err := a.AnalyzeTrack(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if analyzeFull {
			return printJSON(result)
		}

		return printJSON(analysisSummary{
			Duration:      result.Duration,
			Tempo:         result.Tempo,
			Key:           result.Key,
			CamelotKey:    result.CamelotKey,
			EnergyLevel:   result.EnergyLevel,
			Danceability:  result.Danceability,
			MixDifficulty: result.MixDifficulty,
			IntroEnd:      result.IntroEnd,
			OutroStart:    result.OutroStart,
			Beats:         len(result.Beats),
			MixInPoints:   result.MixInPoints,
			MixOutPoints:  result.MixOutPoints,
			GenreHints:    result.GenreHints,
			MoodTags:      result.MoodTags,
		})
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "print the complete analysis including beat grid and curves")
}
