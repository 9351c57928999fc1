package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay is how long a new file must sit unchanged before it is treated
// as fully written. Downloads and copies fire many write events.
const settleDelay = 2 * time.Second

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// Handler is called with the path of each audio file that appears in the
// watched library directory
type Handler func(ctx context.Context, path string)

// Watcher feeds locally added audio files into the pipeline
type Watcher struct {
	dir     string
	handler Handler
	logger  *zap.Logger

	watcher *fsnotify.Watcher
	pending map[string]time.Time
}

// NewWatcher creates a watcher for dir. The directory is created when missing.
func NewWatcher(dir string, handler Handler, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		handler: handler,
		logger:  log,
		watcher: fsw,
		pending: make(map[string]time.Time),
	}, nil
}

// Run scans existing files, then watches for new ones until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.scanExisting(ctx)

	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isAudioFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.pending[event.Name] = time.Now()
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(w.pending, event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("library_watch_error", zap.Error(err))

		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

// scanExisting handles audio files already present at startup
func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("library_scan_failed", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isAudioFile(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		w.logger.Info("library_file_found", zap.String("path", path))
		w.handler(ctx, path)
	}
}

// flushSettled hands off files whose last event is older than settleDelay
func (w *Watcher) flushSettled(ctx context.Context) {
	now := time.Now()
	for path, last := range w.pending {
		if now.Sub(last) < settleDelay {
			continue
		}
		delete(w.pending, path)

		if _, err := os.Stat(path); err != nil {
			continue
		}

		w.logger.Info("library_file_added", zap.String("path", path))
		w.handler(ctx, path)
	}
}

func isAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}
