package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// SessionRepositoryInterface defines the interface for session repository operations
// This interface enables better testability by allowing mock implementations
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	ListActive(ctx context.Context) ([]*models.Session, error)
}

// TrackRepositoryInterface defines the interface for track repository operations
type TrackRepositoryInterface interface {
	Create(ctx context.Context, track *models.Track) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Track, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID, status *models.TrackStatus) ([]*models.Track, error)
	Update(ctx context.Context, track *models.Track) error
	MarkPlayed(ctx context.Context, id uuid.UUID) error
}

// MixRepositoryInterface defines the interface for mix repository operations
type MixRepositoryInterface interface {
	Create(ctx context.Context, mix *models.Mix) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Mix, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Mix, error)
	Update(ctx context.Context, mix *models.Mix) error
	SetRating(ctx context.Context, id uuid.UUID, rating int, feedback string) error
}

// Ensure concrete types implement the interfaces
var (
	_ SessionRepositoryInterface = (*SessionRepository)(nil)
	_ TrackRepositoryInterface   = (*TrackRepository)(nil)
	_ MixRepositoryInterface     = (*MixRepository)(nil)
)
