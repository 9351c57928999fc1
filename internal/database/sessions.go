package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// SessionRepository handles session database operations
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, prompt, status, plan, prompt_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	planJSON, err := marshalNullable(session.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	historyJSON, err := json.Marshal(emptySlice(session.PromptHistory))
	if err != nil {
		return fmt.Errorf("failed to marshal prompt history: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		session.ID,
		session.Prompt,
		session.Status,
		planJSON,
		historyJSON,
		now,
		now,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session := &models.Session{}
	var planJSON []byte
	var historyJSON []byte
	var endedAt sql.NullTime

	query := `
		SELECT id, prompt, status, plan, prompt_history, created_at, updated_at, ended_at
		FROM sessions
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Prompt,
		&session.Status,
		&planJSON,
		&historyJSON,
		&session.CreatedAt,
		&session.UpdatedAt,
		&endedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if len(planJSON) > 0 {
		session.Plan = &models.EmotionalPlan{}
		if err := json.Unmarshal(planJSON, session.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
	}

	if err := json.Unmarshal(historyJSON, &session.PromptHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompt history: %w", err)
	}

	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}

	return session, nil
}

// Update updates an existing session
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	query := `
		UPDATE sessions
		SET prompt = $2, status = $3, plan = $4, prompt_history = $5, updated_at = $6, ended_at = $7
		WHERE id = $1
		RETURNING updated_at
	`

	planJSON, err := marshalNullable(session.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	historyJSON, err := json.Marshal(emptySlice(session.PromptHistory))
	if err != nil {
		return fmt.Errorf("failed to marshal prompt history: %w", err)
	}

	var endedAt sql.NullTime
	if session.EndedAt != nil {
		endedAt = sql.NullTime{Time: *session.EndedAt, Valid: true}
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		session.ID,
		session.Prompt,
		session.Status,
		planJSON,
		historyJSON,
		now,
		endedAt,
	).Scan(&session.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("session not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// ListActive retrieves sessions that are planning or active
func (r *SessionRepository) ListActive(ctx context.Context) ([]*models.Session, error) {
	query := `
		SELECT id, prompt, status, plan, prompt_history, created_at, updated_at, ended_at
		FROM sessions
		WHERE status IN ('planning', 'active')
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		var planJSON []byte
		var historyJSON []byte
		var endedAt sql.NullTime

		err := rows.Scan(
			&session.ID,
			&session.Prompt,
			&session.Status,
			&planJSON,
			&historyJSON,
			&session.CreatedAt,
			&session.UpdatedAt,
			&endedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if len(planJSON) > 0 {
			session.Plan = &models.EmotionalPlan{}
			if err := json.Unmarshal(planJSON, session.Plan); err != nil {
				return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
			}
		}

		if err := json.Unmarshal(historyJSON, &session.PromptHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prompt history: %w", err)
		}

		if endedAt.Valid {
			session.EndedAt = &endedAt.Time
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	// typed nil pointers also serialize as SQL NULL
	switch p := v.(type) {
	case *models.EmotionalPlan:
		if p == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
