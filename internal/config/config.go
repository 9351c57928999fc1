package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	FrontendURL      string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int

	AIProvider string
	OpenAIKey  string
	AIModel    string
	AIBaseURL  string

	TracksDir  string
	MixesDir   string
	VisualsDir string
	LibraryDir string

	YtdlpPath  string
	FfmpegPath string

	MaxBPMDiff      float64
	RateLimitRate   string
	WorkerDebugMode bool
	ServerDebugMode bool

	OTELEnabled  bool
	OTELEndpoint string
}

// FileConfig is the optional YAML overlay (MOODDJ_CONFIG). Only media and
// mixing knobs live here; connection strings and secrets stay in the
// environment.
type FileConfig struct {
	Media struct {
		TracksDir  string `yaml:"tracks_dir"`
		MixesDir   string `yaml:"mixes_dir"`
		VisualsDir string `yaml:"visuals_dir"`
		LibraryDir string `yaml:"library_dir"`
	} `yaml:"media"`
	Mixing struct {
		MaxBPMDiff float64 `yaml:"max_bpm_diff"`
	} `yaml:"mixing"`
	Tools struct {
		Ytdlp  string `yaml:"ytdlp"`
		Ffmpeg string `yaml:"ffmpeg"`
	} `yaml:"tools"`
}

// Load loads configuration from the environment, an optional .env file, and
// an optional YAML overlay pointed to by MOODDJ_CONFIG
func Load() (*Config, error) {
	// Missing .env is fine; explicit env vars win over file values
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		AIProvider:       getEnv("AI_PROVIDER", "openai"),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		TracksDir:        getEnv("TRACKS_DIR", "data/tracks"),
		MixesDir:         getEnv("MIXES_DIR", "data/mixed"),
		VisualsDir:       getEnv("VISUALS_DIR", "data/visuals"),
		LibraryDir:       getEnv("LIBRARY_DIR", ""),
		YtdlpPath:        getEnv("YTDLP_PATH", "yt-dlp"),
		FfmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		MaxBPMDiff:       getEnvFloat("MAX_BPM_DIFF", 10),
		RateLimitRate:    getEnv("RATE_LIMIT_RATE", ""),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if path := os.Getenv("MOODDJ_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for the mix pipeline")
	}

	return cfg, nil
}

// applyFile overlays values from a YAML config file onto cfg
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if fc.Media.TracksDir != "" {
		c.TracksDir = fc.Media.TracksDir
	}
	if fc.Media.MixesDir != "" {
		c.MixesDir = fc.Media.MixesDir
	}
	if fc.Media.VisualsDir != "" {
		c.VisualsDir = fc.Media.VisualsDir
	}
	if fc.Media.LibraryDir != "" {
		c.LibraryDir = fc.Media.LibraryDir
	}
	if fc.Mixing.MaxBPMDiff > 0 {
		c.MaxBPMDiff = fc.Mixing.MaxBPMDiff
	}
	if fc.Tools.Ytdlp != "" {
		c.YtdlpPath = fc.Tools.Ytdlp
	}
	if fc.Tools.Ffmpeg != "" {
		c.FfmpegPath = fc.Tools.Ffmpeg
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
