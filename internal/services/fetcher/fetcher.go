package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/cache"
	"github.com/offbeatlabs/mooddj/internal/logger"
)

// DefaultYtdlpPath is used when no explicit binary path is configured
const DefaultYtdlpPath = "yt-dlp"

// Cache is the subset of the track cache the fetcher needs
type Cache interface {
	GetFetch(ctx context.Context, queryOrURL string) (*cache.FetchResult, error)
	PutFetch(ctx context.Context, queryOrURL string, result *cache.FetchResult) error
}

// Fetcher downloads audio for track queries using yt-dlp
type Fetcher struct {
	ytdlpPath string
	outputDir string
	cache     Cache
	logger    *zap.Logger
}

// New creates a Fetcher writing downloads to outputDir. cache may be nil.
func New(ytdlpPath, outputDir string, trackCache Cache, log *zap.Logger) *Fetcher {
	if ytdlpPath == "" {
		ytdlpPath = DefaultYtdlpPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		ytdlpPath: ytdlpPath,
		outputDir: outputDir,
		cache:     trackCache,
		logger:    log,
	}
}

// videoInfo is the subset of yt-dlp's -J output we consume
type videoInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Uploader   string      `json:"uploader"`
	Duration   float64     `json:"duration"`
	WebpageURL string      `json:"webpage_url"`
	Entries    []videoInfo `json:"entries,omitempty"`
}

// Fetch resolves a query or URL to a downloaded mp3, using the cache when the
// same query was resolved before and the file is still on disk
func (f *Fetcher) Fetch(ctx context.Context, queryOrURL string) (*cache.FetchResult, error) {
	if f.cache != nil {
		cached, err := f.cache.GetFetch(ctx, queryOrURL)
		if err == nil && fileExists(cached.FilePath) {
			f.logger.Debug("fetch_cache_hit",
				zap.String("query", logger.SanitizeString(queryOrURL, 200)),
				zap.String("title", cached.Title),
			)
			return cached, nil
		}
	}

	target := queryOrURL
	if !strings.HasPrefix(target, "http") {
		target = "ytsearch1:" + target
	}

	info, err := f.probe(ctx, target)
	if err != nil {
		return nil, err
	}

	filePath, err := f.findExisting(info.ID)
	if err == nil {
		f.logger.Debug("fetch_existing_file",
			zap.String("video_id", info.ID),
			zap.String("file_path", filePath),
		)
	} else {
		filePath, err = f.download(ctx, target, info)
		if err != nil {
			return nil, err
		}
	}

	result := &cache.FetchResult{
		FilePath:  filePath,
		Title:     info.Title,
		Artist:    info.Uploader,
		VideoID:   info.ID,
		SourceURL: info.WebpageURL,
		Duration:  info.Duration,
	}

	if f.cache != nil {
		if err := f.cache.PutFetch(ctx, queryOrURL, result); err != nil {
			f.logger.Warn("fetch_cache_write_failed", zap.Error(err))
		}
	}

	return result, nil
}

// probe extracts metadata without downloading
func (f *Fetcher) probe(ctx context.Context, target string) (*videoInfo, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.ytdlpPath, "-J", "--no-warnings", target)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp probe failed: %w: %s", err, truncate(stderr.String(), 500))
	}

	var info videoInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	// Search results come back as a one-entry playlist
	if len(info.Entries) > 0 {
		info = info.Entries[0]
	}
	if info.ID == "" {
		return nil, fmt.Errorf("no results for query")
	}

	return &info, nil
}

// download fetches the audio and returns the path of the resulting mp3
func (f *Fetcher) download(ctx context.Context, target string, info *videoInfo) (string, error) {
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	outTemplate := filepath.Join(f.outputDir, "%(title)s_%(id)s.%(ext)s")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.ytdlpPath,
		"-f", "bestaudio[ext=m4a]/bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "320K",
		"-o", outTemplate,
		"--no-warnings",
		"-q",
		target,
	)
	cmd.Stderr = &stderr

	f.logger.Info("fetch_download_start",
		zap.String("video_id", info.ID),
		zap.String("title", info.Title),
	)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w: %s", err, truncate(stderr.String(), 500))
	}

	// The postprocessor may have mangled the title, so match on video ID
	filePath, err := f.findExisting(info.ID)
	if err != nil {
		// Fall back to the expected name
		title := sanitizeTitle(info.Title)
		candidate := filepath.Join(f.outputDir, fmt.Sprintf("%s_%s.mp3", title, info.ID))
		if fileExists(candidate) {
			return candidate, nil
		}
		return "", fmt.Errorf("downloaded file not found for video %s", info.ID)
	}

	return filePath, nil
}

// findExisting looks for an already-downloaded mp3 containing the video ID
func (f *Fetcher) findExisting(videoID string) (string, error) {
	if videoID == "" {
		return "", fmt.Errorf("empty video ID")
	}

	entries, err := os.ReadDir(f.outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read output dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, videoID) && strings.HasSuffix(name, ".mp3") {
			return filepath.Join(f.outputDir, name), nil
		}
	}

	return "", fmt.Errorf("no existing file for video %s", videoID)
}

func sanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "/", "_")
	title = strings.ReplaceAll(title, "\\", "_")
	return title
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
