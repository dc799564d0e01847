// Package config provides configuration management for the engine
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the engine
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Auth   AuthConfig
	Game   GameConfig
	NATS   NATSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects the game record backend.
type StoreConfig struct {
	// Backend is one of "memory", "badger" or "postgres".
	Backend string
	// Dir is the badger database directory.
	Dir string
	// DSN is the postgres connection string.
	DSN string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
}

// GameConfig holds game-related configuration
type GameConfig struct {
	// MathPath optionally points to a YAML reel definition; empty uses
	// the built-in math.
	MathPath       string
	OpeningBalance int64
	JackpotOpening int64
}

// NATSConfig holds audit event publishing configuration. An empty URL
// keeps events log-only.
type NATSConfig struct {
	URL     string
	Subject string
}

// Load loads configuration from environment with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("REELCORE_PORT", "8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend: getEnv("REELCORE_STORE", "memory"),
			Dir:     getEnv("REELCORE_BADGER_DIR", "data/records"),
			DSN:     getEnv("REELCORE_PG_DSN", "host=localhost dbname=reelcore sslmode=disable"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("REELCORE_JWT_SECRET", "reelcore-dev-secret-change-in-production"),
			TokenExpiry: 24 * time.Hour,
			BcryptCost:  10,
		},
		Game: GameConfig{
			MathPath:       getEnv("REELCORE_MATH_PATH", ""),
			OpeningBalance: getEnvInt64("REELCORE_OPENING_BALANCE", 10_000),
			JackpotOpening: getEnvInt64("REELCORE_JACKPOT_OPENING", 50_000),
		},
		NATS: NATSConfig{
			URL:     getEnv("REELCORE_NATS_URL", ""),
			Subject: getEnv("REELCORE_NATS_SUBJECT", "reelcore.audit"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
