package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/offbeatlabs/mooddj/internal/services/fetcher"
)

var fetchOutputDir string

var fetchCmd = &cobra.Command{
	Use:   "fetch <query or URL>",
	Short: "Download a track by search query or URL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		f := fetcher.New(ytdlpPath, fetchOutputDir, nil, log)

		result, err := f.Fetch(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		return printJSON(result)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOutputDir, "out", "data/tracks", "directory to download into")
}
