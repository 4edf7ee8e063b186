package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string `env:"MEALMINDER_DB_PATH,default=data/mealminder.db"`

	// Suggestion provider backends. The key matching SuggestionBackend
	// ("gemini" or "groq") must be set.
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GroqAPIKey        string `env:"GROQ_API_KEY"`
	SuggestionBackend string `env:"SUGGESTION_BACKEND,default=groq"`

	// Default identity for the single-user CLI flows.
	DefaultUserID string `env:"MEALMINDER_USER_ID,default=default_user"`

	// Household defaults used when no meal profile exists yet.
	DefaultServingSize      int `env:"DEFAULT_SERVING_SIZE,default=2"`
	DefaultMealDurationMins int `env:"DEFAULT_MEAL_DURATION_MINS,default=45"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	switch cfg.SuggestionBackend {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("SUGGESTION_BACKEND=gemini requires GEMINI_API_KEY to be set")
		}
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("SUGGESTION_BACKEND=groq requires GROQ_API_KEY to be set")
		}
	default:
		return nil, fmt.Errorf("unknown SUGGESTION_BACKEND %q (expected gemini or groq)", cfg.SuggestionBackend)
	}

	return &cfg, nil
}
