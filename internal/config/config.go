// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Pipeline defaults — mirror the original NorCal discovery setup
// --------------------------------------------------------------------------

const (
	// DefaultGameTitle is the videogame name events must match exactly.
	DefaultGameTitle = "Super Smash Bros. Ultimate"

	// DefaultMinEntrants is the minimum entrant count for an event to be kept.
	DefaultMinEntrants = 16

	// DefaultRateSeconds is the minimum spacing between start.gg calls.
	DefaultRateSeconds = 1.1
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches the store schema
// --------------------------------------------------------------------------

const (
	RunsTable       = "runs"
	RunEventsTable  = "run_events"
	RunPlayersTable = "run_players"
	RunRatingsTable = "run_ratings"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// start.gg API
	StartGGAPIKey  string
	StartGGRate    time.Duration
	StartGGBaseURL string

	// Database (optional — required only for the Postgres sink and the API)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// API rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
// The start.gg API key is not validated here: cmd/api never needs it, and
// cmd/ingest checks it at command time for better error messages.
func Load() (*Config, error) {
	rateSeconds, err := envFloat("STARTGG_RATE_SECONDS", DefaultRateSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse STARTGG_RATE_SECONDS: %w", err)
	}

	return &Config{
		StartGGAPIKey:  envOr("STARTGG_API_KEY", ""),
		StartGGRate:    time.Duration(rateSeconds * float64(time.Second)),
		StartGGBaseURL: envOr("STARTGG_URL", "https://api.start.gg/gql/alpha"),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// RequireDatabase errors unless a database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	return nil
}

// RequireAPIKey errors unless a start.gg API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.StartGGAPIKey == "" {
		return fmt.Errorf("STARTGG_API_KEY must be set (or pass --api-key)")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
