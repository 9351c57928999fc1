package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/offbeatlabs/mooddj/internal/cache"
	"github.com/offbeatlabs/mooddj/internal/config"
	"github.com/offbeatlabs/mooddj/internal/database"
	"github.com/offbeatlabs/mooddj/internal/library"
	"github.com/offbeatlabs/mooddj/internal/logger"
	"github.com/offbeatlabs/mooddj/internal/models"
	"github.com/offbeatlabs/mooddj/internal/queue"
	"github.com/offbeatlabs/mooddj/internal/services/analysis"
	"github.com/offbeatlabs/mooddj/internal/services/fetcher"
	"github.com/offbeatlabs/mooddj/internal/services/mixer"
	"github.com/offbeatlabs/mooddj/internal/services/planner"
	"github.com/offbeatlabs/mooddj/internal/services/visuals"
	"github.com/offbeatlabs/mooddj/internal/workers"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_model", cfg.AIModel),
		zap.String("tracks_dir", cfg.TracksDir),
		zap.String("mixes_dir", cfg.MixesDir),
	)

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to database")

	// Initialize repositories
	sessionRepo := database.NewSessionRepository(db)
	trackRepo := database.NewTrackRepository(db)
	mixRepo := database.NewMixRepository(db)

	// Initialize Redis track cache
	trackCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := trackCache.Close(); err != nil {
			zapLogger.Warn("Failed to close Redis connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to Redis")

	// Initialize RabbitMQ queue
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Resolve the plan provider through the registry
	registry := planner.NewProviderRegistry()
	planner.RegisterOpenAI(registry, zapLogger, debugMode)

	provider, err := registry.GetProvider(cfg.AIProvider, map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize plan provider", zap.Error(err))
	}

	zapLogger.Info("Initialized plan provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", cfg.AIModel),
	)

	// Create the pipeline services
	trackFetcher := fetcher.New(cfg.YtdlpPath, cfg.TracksDir, trackCache, zapLogger)
	trackAnalyzer := analysis.New(cfg.FfmpegPath, trackCache, zapLogger)
	mixRenderer := mixer.New(cfg.FfmpegPath, cfg.MixesDir, cfg.MaxBPMDiff, zapLogger)
	visualRenderer := visuals.New(cfg.VisualsDir, zapLogger)

	pipeline := workers.NewPipeline(
		provider,
		trackFetcher,
		trackAnalyzer,
		mixRenderer,
		visualRenderer,
		sessionRepo,
		trackRepo,
		mixRepo,
		jobQueue,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Watch the local library for manually added audio files
	if cfg.LibraryDir != "" {
		handler := libraryHandler(sessionRepo, trackRepo, jobQueue, zapLogger)
		watcher, err := library.NewWatcher(cfg.LibraryDir, handler, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create library watcher", zap.Error(err))
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && err != context.Canceled {
				zapLogger.Error("Library watcher stopped with error", zap.Error(err))
			}
		}()
		zapLogger.Info("Watching local library", zap.String("dir", cfg.LibraryDir))
	}

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("Failed to start consuming messages", zap.Error(err))
	}

	zapLogger.Info("Worker started, consuming messages from queue")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("Message channel closed")
					return
				}

				// Process job
				if err := pipeline.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("Failed to process job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("Queue error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	// Cancel context to stop processing
	cancel()

	zapLogger.Info("Worker stopped")
}

// libraryHandler offers locally added audio files to every active session.
// Each file becomes a track that goes straight to analysis, no download step.
func libraryHandler(
	sessionRepo database.SessionRepositoryInterface,
	trackRepo database.TrackRepositoryInterface,
	jobQueue queue.JobQueue,
	zapLogger *zap.Logger,
) library.Handler {
	return func(ctx context.Context, path string) {
		sessions, err := sessionRepo.ListActive(ctx)
		if err != nil {
			zapLogger.Error("Failed to list active sessions for library file",
				zap.String("path", path),
				zap.Error(err),
			)
			return
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		for _, sess := range sessions {
			// Skip sessions that already have this file
			existing, err := trackRepo.GetBySessionID(ctx, sess.ID, nil)
			if err != nil {
				zapLogger.Error("Failed to list session tracks",
					zap.String("session_id", sess.ID.String()),
					zap.Error(err),
				)
				continue
			}
			known := false
			for _, t := range existing {
				if t.FilePath == path {
					known = true
					break
				}
			}
			if known {
				continue
			}

			track := &models.Track{
				ID:        uuid.New(),
				SessionID: sess.ID,
				Query:     "library:" + title,
				Title:     title,
				FilePath:  path,
				Status:    models.TrackStatusAnalyzing,
			}
			if err := trackRepo.Create(ctx, track); err != nil {
				zapLogger.Error("Failed to create library track",
					zap.String("session_id", sess.ID.String()),
					zap.Error(err),
				)
				continue
			}

			job := queue.NewJob(queue.JobTypeAnalyzeTrack, sess.ID, &track.ID)
			if err := jobQueue.Enqueue(ctx, job); err != nil {
				zapLogger.Error("Failed to enqueue analyze job for library track",
					zap.String("track_id", track.ID.String()),
					zap.Error(err),
				)
				continue
			}

			zapLogger.Info("Added library track to session",
				zap.String("session_id", sess.ID.String()),
				zap.String("title", title),
			)
		}
	}
}
