// Package config loads settings for the API server and the terminal client.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server holds the API server configuration.
type Server struct {
	StoreURI           string
	Port               string
	CORSAllowedOrigins string
	StoreRequired      bool
	DBDebug            bool
	ShutdownTimeout    time.Duration
}

// LoadServer reads the server configuration from the environment, after
// loading a .env file from the working directory when one exists.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()
	return ServerFromEnv()
}

// ServerFromEnv reads the server configuration from the environment only.
func ServerFromEnv() (*Server, error) {
	cfg := &Server{
		StoreURI:           getEnv("STORE_URI", "sqlite://todos.db"),
		Port:               getEnv("PORT", "5000"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	var err error
	if cfg.StoreRequired, err = getBool("STORE_REQUIRED"); err != nil {
		return nil, err
	}
	if cfg.DBDebug, err = getBool("DB_DEBUG"); err != nil {
		return nil, err
	}

	cfg.ShutdownTimeout = 30 * time.Second
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}
	return cfg, nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
