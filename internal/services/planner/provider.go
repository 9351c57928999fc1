package planner

import (
	"context"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// Provider is the interface for emotional plan providers
type Provider interface {
	// PlanSession turns a mood prompt into a structured emotional plan
	PlanSession(ctx context.Context, prompt string) (*models.EmotionalPlan, error)

	// RefreshPlan re-plans mid-session after a prompt change. Titles already
	// played are passed so the provider does not suggest them again.
	RefreshPlan(ctx context.Context, prompt string, previousPlan *models.EmotionalPlan, playedTitles []string) (*models.EmotionalPlan, error)
}

// ProviderFactory creates a plan provider from string configuration
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available plan providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "plan provider not found: " + e.Name
}

// Context key types for logging (to avoid collisions with string keys)
type contextKey string

const (
	sessionIDContextKey contextKey = "session_id"
	requestIDContextKey contextKey = "request_id"
)

// SessionIDContextKey returns the context key for session ID
func SessionIDContextKey() contextKey {
	return sessionIDContextKey
}

// RequestIDContextKey returns the context key for request ID
func RequestIDContextKey() contextKey {
	return requestIDContextKey
}

// ExtractRequestID extracts a request ID from context if available
func ExtractRequestID(ctx context.Context) string {
	if reqID := ctx.Value(requestIDContextKey); reqID != nil {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// ExtractSessionID extracts a session ID from context if available (handles UUID)
func ExtractSessionID(ctx context.Context) string {
	if sessionID := ctx.Value(sessionIDContextKey); sessionID != nil {
		if id, ok := sessionID.(interface{ String() string }); ok {
			return id.String()
		}
		if id, ok := sessionID.(string); ok {
			return id
		}
	}
	return ""
}
