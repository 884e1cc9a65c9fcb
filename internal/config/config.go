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
// Table names, matching internal/db/schema.sql
// --------------------------------------------------------------------------

const (
	TransfersTable = "transfers"

	// TransfersChannel is the LISTEN/NOTIFY channel announcing replaced
	// league seasons.
	TransfersChannel = "transfers_changed"
)

// --------------------------------------------------------------------------
// Scraper defaults
// --------------------------------------------------------------------------

const (
	DefaultBaseURL     = "https://www.transfermarkt.com"
	DefaultMaxAttempts = 5
	DefaultDataDir     = "data"
)

// DefaultUserAgents is the client identity pool rotated by the fetcher.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/115.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15) Firefox/113.0",
	"Mozilla/5.0 (X11; Linux x86_64) Chrome/113.0.0.0",
}

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Transfermarkt scraping
	BaseURL           string
	RequestTimeout    time.Duration
	MaxAttempts       int
	RequestsPerMinute int
	UserAgents        []string
	DataDir           string

	// Database (optional for the CLI, required by the API)
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

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Background refresh of the current season (API process only)
	RefreshInterval time.Duration
	RefreshLeagues  []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:           strings.TrimRight(envOr("TM_BASE_URL", DefaultBaseURL), "/"),
		RequestTimeout:    time.Duration(envInt("TM_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxAttempts:       envInt("TM_MAX_ATTEMPTS", DefaultMaxAttempts),
		RequestsPerMinute: envInt("TM_REQUESTS_PER_MINUTE", 20),
		UserAgents:        envList("TM_USER_AGENTS", DefaultUserAgents),
		DataDir:           envOr("DATA_DIR", DefaultDataDir),

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

		RefreshInterval: time.Duration(envInt("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,
		RefreshLeagues:  envList("REFRESH_LEAGUES", []string{"premier-league"}),
	}

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("TM_MAX_ATTEMPTS must be at least 1, got %d", cfg.MaxAttempts)
	}
	if len(cfg.UserAgents) == 0 {
		return nil, fmt.Errorf("TM_USER_AGENTS must not be empty")
	}
	for _, slug := range cfg.RefreshLeagues {
		if _, err := LookupLeague(slug); err != nil {
			return nil, fmt.Errorf("REFRESH_LEAGUES: %w", err)
		}
	}

	return cfg, nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
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
