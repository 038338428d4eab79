// Package config loads marketd settings from the environment, with optional
// .env file support for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the marketd runtime settings.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	LockWait  time.Duration
	LogPath   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:      getenv("MARKET_ADDR", ":8080"),
		DBPath:    getenv("MARKET_DB", "market.sqlite3"),
		JWTSecret: getenv("MARKET_JWT_SECRET", ""),
		LockWait:  getduration("MARKET_LOCK_WAIT", 5*time.Second),
		LogPath:   getenv("MARKET_LOG_FILE", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
