package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/offbeatlabs/mooddj/internal/services/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan <prompt>",
	Short: "Turn a mood prompt into an emotional plan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		provider := planner.NewOpenAIPlannerWithLogger(
			apiKey,
			os.Getenv("AI_BASE_URL"),
			os.Getenv("AI_MODEL"),
			log,
			debugMode,
		)

		prompt := strings.Join(args, " ")
		plan, err := provider.PlanSession(cmd.Context(), prompt)
		if err != nil {
			return fmt.Errorf("planning failed: %w", err)
		}

		return printJSON(plan)
	},
}
