// Package config loads service settings from the environment once at startup.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is read once from the environment and treated as immutable.
type Config struct {
	Env      string
	Addr     string
	LogLevel string

	// Storage
	Store        string
	SQLitePath   string
	DatabaseURL  string
	SlowQuery    time.Duration
	EnrollRetry  int
	SeedCSVPath  string
	Location     *time.Location
	LocationName string

	// HTTP
	CSRFKey   []byte
	RateLimit float64

	SentryDSN string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads Config from the environment.
// POST: returns an error naming every missing or malformed variable
func Load() (*Config, error) {
	cfg := &Config{
		Env:         strings.ToLower(getEnvString("CLUB_ENV", "development")),
		Addr:        getEnvString("CLUB_ADDR", ":8080"),
		LogLevel:    getEnvString("CLUB_LOG_LEVEL", "info"),
		Store:       strings.ToLower(getEnvString("CLUB_STORE", StoreSQLite)),
		SQLitePath:  getEnvString("CLUB_SQLITE_PATH", "clubhouse.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SlowQuery:   time.Duration(getEnvInt("CLUB_SLOW_QUERY_MS", 50)) * time.Millisecond,
		EnrollRetry: getEnvInt("CLUB_ENROLL_RETRIES", 5),
		SeedCSVPath: os.Getenv("CLUB_SEED_DIRECTORY"),
		RateLimit:   getEnvFloat("CLUB_RATE_LIMIT", 10),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
	}

	var problems []string

	switch cfg.Store {
	case StoreSQLite:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL (required when CLUB_STORE=postgres)")
		}
	default:
		problems = append(problems, fmt.Sprintf("CLUB_STORE=%q (want sqlite or postgres)", cfg.Store))
	}

	cfg.LocationName = getEnvString("CLUB_TZ", "UTC")
	loc, err := time.LoadLocation(cfg.LocationName)
	if err != nil {
		problems = append(problems, fmt.Sprintf("CLUB_TZ=%q", cfg.LocationName))
	}
	cfg.Location = loc

	if raw := os.Getenv("CLUB_CSRF_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			problems = append(problems, "CLUB_CSRF_KEY (want 64 hex characters)")
		}
		cfg.CSRFKey = key
	} else if cfg.IsProduction() {
		problems = append(problems, "CLUB_CSRF_KEY")
	}

	if cfg.EnrollRetry < 1 {
		problems = append(problems, "CLUB_ENROLL_RETRIES (must be >= 1)")
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid or missing environment variables: %v", problems)
	}
	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultVal
}
