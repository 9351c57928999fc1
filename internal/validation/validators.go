package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/offbeatlabs/mooddj/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateMixStyle validates a MixStyle string value
func ValidateMixStyle(value string) error {
	if models.ValidMixStyle(models.MixStyle(value)) {
		return nil
	}
	return fmt.Errorf("invalid style: %s (must be 'smooth', 'energetic', 'dramatic', or 'extended')", value)
}

// ValidateTrackStatus validates a TrackStatus string value
func ValidateTrackStatus(value string) error {
	switch models.TrackStatus(value) {
	case models.TrackStatusPending, models.TrackStatusFetching, models.TrackStatusAnalyzing,
		models.TrackStatusReady, models.TrackStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'fetching', 'analyzing', 'ready', or 'failed')", value)
	}
}
