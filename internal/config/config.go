// Package config collects the server's environment configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	// Port is the HTTP listen port. PORT, default 8080.
	Port int

	// DBPath is the SQLite database file. DB_PATH, default ./data/dealdesk.db.
	DBPath string

	// AdminEmail is the single admin login identity. ADMIN_EMAIL, required.
	AdminEmail string

	// AdminPassword is the plaintext admin password. ADMIN_PASSWORD.
	// Ignored when AdminPasswordHash is set.
	AdminPassword string

	// AdminPasswordHash is a bcrypt hash of the admin password.
	// ADMIN_PASSWORD_HASH. Preferred over AdminPassword.
	AdminPasswordHash string

	// SessionSecret signs session tokens. SESSION_SECRET, required,
	// should be a strong random string.
	SessionSecret string

	// SessionTTL is how long a login lasts. SESSION_TTL_HOURS, default 168 (7 days).
	SessionTTL time.Duration
}

// FromEnv reads the configuration, reporting missing required values.
// The error message names the variable but never echoes a value.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		DBPath:            getEnv("DB_PATH", "./data/dealdesk.db"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        168 * time.Hour,
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_HOURS %q", raw)
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}

	if cfg.AdminEmail == "" {
		return nil, errors.New("ADMIN_EMAIL is required")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
