package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/logger"
)

var (
	debugMode  bool
	ytdlpPath  string
	ffmpegPath string
)

var rootCmd = &cobra.Command{
	Use:   "djctl",
	Short: "Run pieces of the mix pipeline from the command line",
	Long: `djctl runs individual stages of the mix pipeline locally:
planning a session from a mood prompt, fetching a track, analyzing
audio, and rendering a transition between two files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine
		_ = godotenv.Load()
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ytdlpPath, "ytdlp", envOr("YTDLP_PATH", "yt-dlp"), "path to the yt-dlp binary")
	rootCmd.PersistentFlags().StringVar(&ffmpegPath, "ffmpeg", envOr("FFMPEG_PATH", "ffmpeg"), "path to the ffmpeg binary")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(mixCmd)
}

func newLogger() (*zap.Logger, error) {
	return logger.NewDevelopmentLogger(debugMode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
