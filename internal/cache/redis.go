package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/offbeatlabs/mooddj/internal/models"
)

const (
	fetchKeyPrefix    = "fetch:"
	analysisKeyPrefix = "analysis:"

	// DefaultFetchTTL bounds how long a resolved download is remembered
	DefaultFetchTTL = 30 * 24 * time.Hour
	// DefaultAnalysisTTL bounds how long an audio analysis is remembered
	DefaultAnalysisTTL = 7 * 24 * time.Hour
)

// ErrMiss is returned when a key is not in the cache
var ErrMiss = errors.New("cache miss")

// FetchResult is what the fetcher remembers about a resolved query
type FetchResult struct {
	FilePath  string  `json:"file_path"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	VideoID   string  `json:"video_id"`
	SourceURL string  `json:"source_url"`
	Duration  float64 `json:"duration"`
}

// TrackCache caches download results and audio analyses in Redis so repeated
// queries skip yt-dlp and repeated mixes skip re-analysis
type TrackCache struct {
	client      *redis.Client
	fetchTTL    time.Duration
	analysisTTL time.Duration
}

// New creates a TrackCache from a Redis URL
func New(redisURL string) (*TrackCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return &TrackCache{
		client:      redis.NewClient(opts),
		fetchTTL:    DefaultFetchTTL,
		analysisTTL: DefaultAnalysisTTL,
	}, nil
}

// NewWithClient creates a TrackCache around an existing client (used by tests
// and by the server, which shares one client with the rate limiter)
func NewWithClient(client *redis.Client) *TrackCache {
	return &TrackCache{
		client:      client,
		fetchTTL:    DefaultFetchTTL,
		analysisTTL: DefaultAnalysisTTL,
	}
}

// QueryHash returns the short hash used to key a fetch query
func QueryHash(queryOrURL string) string {
	sum := md5.Sum([]byte(queryOrURL))
	return hex.EncodeToString(sum[:])[:12]
}

// GetFetch looks up a previously resolved query
func (c *TrackCache) GetFetch(ctx context.Context, queryOrURL string) (*FetchResult, error) {
	data, err := c.client.Get(ctx, fetchKeyPrefix+QueryHash(queryOrURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fetch cache: %w", err)
	}

	var result FetchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("corrupt fetch cache entry: %w", err)
	}
	return &result, nil
}

// PutFetch stores a resolved query
func (c *TrackCache) PutFetch(ctx context.Context, queryOrURL string, result *FetchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal fetch result: %w", err)
	}

	if err := c.client.Set(ctx, fetchKeyPrefix+QueryHash(queryOrURL), data, c.fetchTTL).Err(); err != nil {
		return fmt.Errorf("failed to write fetch cache: %w", err)
	}
	return nil
}

// GetAnalysis looks up a cached analysis for an audio file
func (c *TrackCache) GetAnalysis(ctx context.Context, filePath string) (*models.Analysis, error) {
	data, err := c.client.Get(ctx, analysisKeyPrefix+QueryHash(filePath)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis cache: %w", err)
	}

	var analysis models.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("corrupt analysis cache entry: %w", err)
	}
	return &analysis, nil
}

// PutAnalysis stores an analysis for an audio file
func (c *TrackCache) PutAnalysis(ctx context.Context, filePath string, analysis *models.Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	if err := c.client.Set(ctx, analysisKeyPrefix+QueryHash(filePath), data, c.analysisTTL).Err(); err != nil {
		return fmt.Errorf("failed to write analysis cache: %w", err)
	}
	return nil
}

// Client exposes the underlying Redis client so other components (the rate
// limiter store) can share the connection
func (c *TrackCache) Client() *redis.Client {
	return c.client
}

// HealthCheck verifies the Redis connection is healthy
func (c *TrackCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (c *TrackCache) Close() error {
	return c.client.Close()
}
