package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// MixRepository handles mix database operations
type MixRepository struct {
	db *DB
}

// NewMixRepository creates a new mix repository
func NewMixRepository(db *DB) *MixRepository {
	return &MixRepository{db: db}
}

const mixColumns = `id, session_id, track_a_id, track_b_id, style, compatibility, mix_out_point, mix_in_point, crossfade_ms, tempo_matched, output_path, status, rating, feedback, created_at, updated_at`

// Create creates a new mix
func (r *MixRepository) Create(ctx context.Context, mix *models.Mix) error {
	query := `
		INSERT INTO mixes (id, session_id, track_a_id, track_b_id, style, compatibility,
		                   mix_out_point, mix_in_point, crossfade_ms, tempo_matched,
		                   output_path, status, feedback, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		mix.ID,
		mix.SessionID,
		mix.TrackAID,
		mix.TrackBID,
		mix.Style,
		mix.Compatibility,
		mix.MixOutPoint,
		mix.MixInPoint,
		mix.CrossfadeMs,
		mix.TempoMatched,
		mix.OutputPath,
		mix.Status,
		mix.Feedback,
		now,
		now,
	).Scan(&mix.CreatedAt, &mix.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create mix: %w", err)
	}

	return nil
}

// GetByID retrieves a mix by ID
func (r *MixRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Mix, error) {
	query := `SELECT ` + mixColumns + ` FROM mixes WHERE id = $1`

	mix, err := scanMix(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mix not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mix: %w", err)
	}

	return mix, nil
}

// GetBySessionID retrieves all mixes for a session, newest last
func (r *MixRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.Mix, error) {
	query := `SELECT ` + mixColumns + ` FROM mixes WHERE session_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mixes: %w", err)
	}
	defer rows.Close()

	var mixes []*models.Mix
	for rows.Next() {
		mix, err := scanMix(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mix: %w", err)
		}
		mixes = append(mixes, mix)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mixes: %w", err)
	}

	return mixes, nil
}

// Update updates an existing mix
func (r *MixRepository) Update(ctx context.Context, mix *models.Mix) error {
	query := `
		UPDATE mixes
		SET style = $2, compatibility = $3, mix_out_point = $4, mix_in_point = $5,
		    crossfade_ms = $6, tempo_matched = $7, output_path = $8, status = $9,
		    rating = $10, feedback = $11, updated_at = $12
		WHERE id = $1
		RETURNING updated_at
	`

	var rating sql.NullInt64
	if mix.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*mix.Rating), Valid: true}
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		mix.ID,
		mix.Style,
		mix.Compatibility,
		mix.MixOutPoint,
		mix.MixInPoint,
		mix.CrossfadeMs,
		mix.TempoMatched,
		mix.OutputPath,
		mix.Status,
		rating,
		mix.Feedback,
		now,
	).Scan(&mix.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("mix not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update mix: %w", err)
	}

	return nil
}

// SetRating stores listener feedback for a rendered mix
func (r *MixRepository) SetRating(ctx context.Context, id uuid.UUID, rating int, feedback string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE mixes SET rating = $2, feedback = $3, updated_at = $4 WHERE id = $1`,
		id, rating, feedback, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to rate mix: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("mix not found")
	}

	return nil
}

func scanMix(row rowScanner) (*models.Mix, error) {
	mix := &models.Mix{}
	var rating sql.NullInt64

	err := row.Scan(
		&mix.ID,
		&mix.SessionID,
		&mix.TrackAID,
		&mix.TrackBID,
		&mix.Style,
		&mix.Compatibility,
		&mix.MixOutPoint,
		&mix.MixInPoint,
		&mix.CrossfadeMs,
		&mix.TempoMatched,
		&mix.OutputPath,
		&mix.Status,
		&rating,
		&mix.Feedback,
		&mix.CreatedAt,
		&mix.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		r := int(rating.Int64)
		mix.Rating = &r
	}

	return mix, nil
}
