package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/database"
	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/queue"
)

type mockSessionRepo struct {
	CreateFunc     func(ctx context.Context, session *models.Session) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.Session, error)
	UpdateFunc     func(ctx context.Context, session *models.Session) error
	ListActiveFunc func(ctx context.Context) ([]*models.Session, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("session not found")
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) ListActive(ctx context.Context) ([]*models.Session, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

type mockTrackRepo struct {
	CreateFunc         func(ctx context.Context, track *models.Track) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.Track, error)
	GetBySessionIDFunc func(ctx context.Context, sessionID uuid.UUID, status *models.TrackStatus) ([]*models.Track, error)
	UpdateFunc         func(ctx context.Context, track *models.Track) error
	MarkPlayedFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTrackRepo) Create(ctx context.Context, track *models.Track) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, track)
	}
	return nil
}

func (m *mockTrackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("track not found")
}

func (m *mockTrackRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID, status *models.TrackStatus) ([]*models.Track, error) {
	if m.GetBySessionIDFunc != nil {
		return m.GetBySessionIDFunc(ctx, sessionID, status)
	}
	return nil, nil
}

func (m *mockTrackRepo) Update(ctx context.Context, track *models.Track) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, track)
	}
	return nil
}

func (m *mockTrackRepo) MarkPlayed(ctx context.Context, id uuid.UUID) error {
	if m.MarkPlayedFunc != nil {
		return m.MarkPlayedFunc(ctx, id)
	}
	return nil
}

type mockMixRepo struct {
	CreateFunc         func(ctx context.Context, mix *models.Mix) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.Mix, error)
	GetBySessionIDFunc func(ctx context.Context, sessionID uuid.UUID) ([]*models.Mix, error)
	UpdateFunc         func(ctx context.Context, mix *models.Mix) error
	SetRatingFunc      func(ctx context.Context, id uuid.UUID, rating int, feedback string) error
}

func (m *mockMixRepo) Create(ctx context.Context, mix *models.Mix) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, mix)
	}
	return nil
}

func (m *mockMixRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Mix, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("mix not found")
}

func (m *mockMixRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Mix, error) {
	if m.GetBySessionIDFunc != nil {
		return m.GetBySessionIDFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockMixRepo) Update(ctx context.Context, mix *models.Mix) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, mix)
	}
	return nil
}

func (m *mockMixRepo) SetRating(ctx context.Context, id uuid.UUID, rating int, feedback string) error {
	if m.SetRatingFunc != nil {
		return m.SetRatingFunc(ctx, id, rating, feedback)
	}
	return nil
}

type mockJobQueue struct {
	EnqueueFunc func(ctx context.Context, job *queue.Job) error
	enqueued    []*queue.Job
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.enqueued = append(m.enqueued, job)
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("Consume not implemented")
}

func (m *mockJobQueue) Close() error { return nil }

func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

// Ensure mocks implement the interfaces they stand in for
var (
	_ database.SessionRepositoryInterface = (*mockSessionRepo)(nil)
	_ database.TrackRepositoryInterface   = (*mockTrackRepo)(nil)
	_ database.MixRepositoryInterface     = (*mockMixRepo)(nil)
	_ queue.JobQueue                      = (*mockJobQueue)(nil)
)
