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

// TrackRepository handles track database operations
type TrackRepository struct {
	db *DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *DB) *TrackRepository {
	return &TrackRepository{db: db}
}

const trackColumns = `id, session_id, query, source_url, video_id, title, artist, duration, file_path, status, analysis, played, created_at, updated_at`

// Create creates a new track
func (r *TrackRepository) Create(ctx context.Context, track *models.Track) error {
	query := `
		INSERT INTO tracks (id, session_id, query, source_url, video_id, title, artist, duration, file_path, status, analysis, played, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	analysisJSON, err := marshalAnalysis(track.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		track.ID,
		track.SessionID,
		track.Query,
		track.SourceURL,
		track.VideoID,
		track.Title,
		track.Artist,
		track.Duration,
		track.FilePath,
		track.Status,
		analysisJSON,
		track.Played,
		now,
		now,
	).Scan(&track.CreatedAt, &track.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}

	return nil
}

// GetByID retrieves a track by ID
func (r *TrackRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = $1`

	track, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("track not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	return track, nil
}

// GetBySessionID retrieves all tracks for a session, optionally filtered by status
func (r *TrackRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID, status *models.TrackStatus) ([]*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE session_id = $1`
	args := []any{sessionID}

	if status != nil {
		query += " AND status = $2"
		args = append(args, string(*status))
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}

	return tracks, nil
}

// Update updates an existing track
func (r *TrackRepository) Update(ctx context.Context, track *models.Track) error {
	query := `
		UPDATE tracks
		SET source_url = $2, video_id = $3, title = $4, artist = $5, duration = $6,
		    file_path = $7, status = $8, analysis = $9, played = $10, updated_at = $11
		WHERE id = $1
		RETURNING updated_at
	`

	analysisJSON, err := marshalAnalysis(track.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		track.ID,
		track.SourceURL,
		track.VideoID,
		track.Title,
		track.Artist,
		track.Duration,
		track.FilePath,
		track.Status,
		analysisJSON,
		track.Played,
		now,
	).Scan(&track.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("track not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	return nil
}

// MarkPlayed flags a track as played
func (r *TrackRepository) MarkPlayed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tracks SET played = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark track played: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("track not found")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*models.Track, error) {
	track := &models.Track{}
	var analysisJSON []byte

	err := row.Scan(
		&track.ID,
		&track.SessionID,
		&track.Query,
		&track.SourceURL,
		&track.VideoID,
		&track.Title,
		&track.Artist,
		&track.Duration,
		&track.FilePath,
		&track.Status,
		&analysisJSON,
		&track.Played,
		&track.CreatedAt,
		&track.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(analysisJSON) > 0 {
		track.Analysis = &models.Analysis{}
		if err := json.Unmarshal(analysisJSON, track.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}

	return track, nil
}

func marshalAnalysis(a *models.Analysis) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}
