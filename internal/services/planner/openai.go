package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/logger"
	"github.com/offbeatlabs/mooddj/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MinSuggestions is the minimum number of track suggestions a plan must carry
	MinSuggestions = 3
	// MaxSuggestions caps how many suggestions are kept from a single plan
	MaxSuggestions = 12

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIPlanner implements the Provider interface using OpenAI's API
type OpenAIPlanner struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIPlanner creates a new OpenAI planner
func NewOpenAIPlanner(apiKey string, model string) *OpenAIPlanner {
	return NewOpenAIPlannerWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIPlannerWithLogger creates a new OpenAI planner with logger support
func NewOpenAIPlannerWithLogger(apiKey string, baseURL string, model string, log *zap.Logger, debugMode bool) *OpenAIPlanner {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIPlanner{
		client:    client,
		model:     model,
		logger:    log,
		debugMode: debugMode,
	}
}

// PlanSession turns a mood prompt into a structured emotional plan
func (p *OpenAIPlanner) PlanSession(ctx context.Context, prompt string) (*models.EmotionalPlan, error) {
	userPrompt := buildPlanPrompt(prompt, nil, nil)

	content, err := p.complete(ctx, "plan_session", userPrompt)
	if err != nil {
		return nil, err
	}

	plan, err := parseAndValidatePlan(content)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// RefreshPlan re-plans mid-session, continuing the arc from the previous plan
// and avoiding titles that already played
func (p *OpenAIPlanner) RefreshPlan(ctx context.Context, prompt string, previousPlan *models.EmotionalPlan, playedTitles []string) (*models.EmotionalPlan, error) {
	userPrompt := buildPlanPrompt(prompt, previousPlan, playedTitles)

	content, err := p.complete(ctx, "refresh_plan", userPrompt)
	if err != nil {
		return nil, err
	}

	plan, err := parseAndValidatePlan(content)
	if err != nil {
		return nil, err
	}

	// Belt and braces: drop any suggestion the model repeated anyway
	if len(playedTitles) > 0 {
		played := make(map[string]bool, len(playedTitles))
		for _, t := range playedTitles {
			played[strings.ToLower(strings.TrimSpace(t))] = true
		}
		kept := plan.MusicSuggestions[:0]
		for _, s := range plan.MusicSuggestions {
			if !played[strings.ToLower(strings.TrimSpace(s))] {
				kept = append(kept, s)
			}
		}
		plan.MusicSuggestions = kept
	}

	if len(plan.MusicSuggestions) == 0 {
		return nil, fmt.Errorf("refreshed plan has no new suggestions")
	}

	return plan, nil
}

// complete sends one chat completion and returns the response content
func (p *OpenAIPlanner) complete(ctx context.Context, operation string, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are an emotion-aware music planner. You design emotional journeys from a listener's current mood to a target mood, expressed as music and visuals. Respond with valid JSON only."),
		openai.UserMessage(userPrompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := ExtractRequestID(ctx)
	sessionID := ExtractSessionID(ctx)

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("prompt_preview", logger.SanitizeDebugContent(userPrompt)),
			zap.String("session_id", sessionID),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("session_id", sessionID),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to plan session: %w", apiErr)
		}
		return "", fmt.Errorf("failed to plan session: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", logger.SanitizeDebugContent(content)),
			zap.String("session_id", sessionID),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

func parseAndValidatePlan(content string) (*models.EmotionalPlan, error) {
	var plan models.EmotionalPlan
	raw := content
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		// Some models wrap the JSON in prose or code fences despite instructions
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), &plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan response: %w", err)
		}
	}

	if plan.CurrentEmotion == "" || plan.TargetEmotion == "" {
		return nil, fmt.Errorf("plan is missing emotions")
	}
	if len(plan.MoodCurve) == 0 {
		plan.MoodCurve = []string{plan.CurrentEmotion, plan.TargetEmotion}
	}
	if len(plan.MusicSuggestions) < MinSuggestions {
		return nil, fmt.Errorf("plan has too few suggestions: %d", len(plan.MusicSuggestions))
	}
	if len(plan.MusicSuggestions) > MaxSuggestions {
		plan.MusicSuggestions = plan.MusicSuggestions[:MaxSuggestions]
	}
	plan.VisualStyle.Normalize()
	if len(plan.VisualStyle.ColorPalette) == 0 {
		plan.VisualStyle.ColorPalette = []string{"#1a1a2e", "#e94560"}
	}
	if plan.VisualStyle.MotionType == "" {
		plan.VisualStyle.MotionType = "fluid"
	}

	return &plan, nil
}

func buildPlanPrompt(prompt string, previousPlan *models.EmotionalPlan, playedTitles []string) string {
	p := fmt.Sprintf(`Given a listener's emotional state and how they want to feel, create a structured music and visuals plan.

Listener input: "%s"

Respond with a JSON object in this format:
{
  "current_emotion": "tired",
  "target_emotion": "energized",
  "mood_curve": ["calm", "focused", "energized"],
  "music_suggestions": [
    "Coldplay - Paradise",
    "Daft Punk - One More Time",
    "ODESZA - A Moment Apart"
  ],
  "visual_style": {
    "color_palette": ["#1a1a2e", "#e94560"],
    "motion_type": "fluid",
    "intensity": "low" | "medium" | "high"
  }
}

Guidelines:
- Only suggest real, public songs as "Artist - Track".
- Suggest 5 to 10 songs whose order follows the mood curve.
- The mood curve should have 3 to 6 stages moving from the current emotion to the target emotion.
- Color palette entries are hex colors.
- Avoid meme songs unless highly relevant.

Return only valid JSON.`, prompt)

	if previousPlan != nil {
		p += fmt.Sprintf("\n\nThe listener is mid-journey. The previous plan moved from %q toward %q along %v. Continue the journey from the current point rather than starting over.",
			previousPlan.CurrentEmotion, previousPlan.TargetEmotion, previousPlan.MoodCurve)
	}

	if len(playedTitles) > 0 {
		p += "\n\nAlready played (do NOT suggest these again):"
		for _, t := range playedTitles {
			p += "\n- " + t
		}
	}

	return p
}

// RegisterOpenAI registers the OpenAI planner with the registry. The logger
// and debug flag are shared by every provider the factory builds.
func RegisterOpenAI(registry *ProviderRegistry, log *zap.Logger, debugMode bool) {
	registry.Register("openai", func(config map[string]string) (Provider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		model := config["model"]
		baseURL := config["base_url"]

		return NewOpenAIPlannerWithLogger(apiKey, baseURL, model, log, debugMode), nil
	})
}
