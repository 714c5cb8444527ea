package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the service. Values come from
// the environment, optionally seeded from a .env file in development.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	AppVersion string `env:"APP_VERSION" envDefault:"dev"`
	Env        string `env:"ENV" envDefault:"development"`
	LogMode    string `env:"LOG_MODE" envDefault:"development"`

	// Redis backs the durable stores (recognition + quiz). When empty, the
	// in-memory stores are used and nothing survives a restart.
	RedisAddr string `env:"REDIS_ADDR"`

	// Vertex AI / Gemini. SimulatedAI switches in the canned demo
	// collaborators instead; it must be set explicitly.
	GoogleProject  string `env:"GOOGLE_CLOUD_PROJECT"`
	GoogleLocation string `env:"GOOGLE_CLOUD_LOCATION" envDefault:"us-central1"`
	VisionModel    string `env:"VISION_MODEL" envDefault:"gemini-2.5-flash"`
	TextModel      string `env:"TEXT_MODEL" envDefault:"gemini-2.5-flash"`
	FallbackModel  string `env:"TEXT_FALLBACK_MODEL" envDefault:"gemini-1.5-flash"`
	SimulatedAI    bool   `env:"SIMULATED_AI" envDefault:"false"`

	// Cache tuning.
	ContentTTL          time.Duration `env:"CONTENT_CACHE_TTL" envDefault:"30m"`
	RecognitionCapacity int           `env:"RECOGNITION_CACHE_CAPACITY" envDefault:"4096"`
	ResponseCapacity    int           `env:"RESPONSE_CACHE_CAPACITY" envDefault:"1024"`

	// External collaborator limits.
	CallTimeout   time.Duration `env:"AI_CALL_TIMEOUT" envDefault:"25s"`
	MaxRetries    int           `env:"AI_MAX_RETRIES" envDefault:"2"`
	MinConfidence float64       `env:"MIN_RECOGNITION_CONFIDENCE" envDefault:"0.7"`

	MaxUploadBytes int `env:"MAX_UPLOAD_BYTES" envDefault:"16777216"`
}

// Load reads .env (best effort) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if !cfg.SimulatedAI && cfg.GoogleProject == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required unless SIMULATED_AI=true")
	}
	return &cfg, nil
}
