// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from the process environment.
// APP_ENV selects a profile whose defaults are applied before individual
// variables override them.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Database drivers resolved from DATABASE_URL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MinSecretKeyLength is the minimum accepted SECRET_KEY length in production.
const MinSecretKeyLength = 32

// devSecretKey is only ever used outside production.
const devSecretKey = "dev-secret-key-change-in-production!"

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	devSecretKey,
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env         string `env:"APP_ENV"`
	Debug       bool   `env:"DEBUG"`
	SecretKey   string `env:"SECRET_KEY"`
	DatabaseURL string `env:"DATABASE_URL"`
	ServerHost  string `env:"SERVER_HOST"`
	ServerPort  int    `env:"SERVER_PORT"`
	SiteName    string `env:"SITE_NAME"`

	StaticDir        string `env:"STATIC_DIR"`
	UploadsDir       string `env:"UPLOADS_DIR"`        // defaults to STATIC_DIR/uploads
	MaxContentLength int64  `env:"MAX_CONTENT_LENGTH"` // request body ceiling in bytes

	AdminSessionLifetime time.Duration `env:"ADMIN_SESSION_LIFETIME"`

	LogDir     string `env:"LOG_DIR"`
	LogLevel   string `env:"LOG_LEVEL"`   // overrides the profile level when set
	LogConsole string `env:"LOG_CONSOLE"` // "true"/"false" overrides the profile console switch

	GeoIPDBPath string `env:"GEOIP_DB_PATH"` // optional GeoLite2-Country.mmdb

	ContactRateLimit float64 `env:"CONTACT_RATE_LIMIT"` // requests per second per IP
	ContactRateBurst int     `env:"CONTACT_RATE_BURST"`
}

// defaults returns the profile for the named environment.
func defaults(name string) *Config {
	cfg := &Config{
		Env:                  name,
		ServerHost:           "localhost",
		ServerPort:           8080,
		SiteName:             "Studio",
		StaticDir:            "./static",
		MaxContentLength:     100 << 20,
		AdminSessionLifetime: time.Hour,
		LogDir:               "logs",
		ContactRateLimit:     0.2,
		ContactRateBurst:     3,
	}

	switch name {
	case EnvDevelopment:
		cfg.Debug = true
		cfg.DatabaseURL = "./data/dev.db"
	case EnvTesting:
		cfg.DatabaseURL = "file::memory:?cache=shared"
		cfg.AdminSessionLifetime = time.Second
		cfg.SecretKey = "testing-secret-key-not-for-production"
	case EnvProduction:
		cfg.ServerHost = "0.0.0.0"
	}

	return cfg
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	name := strings.TrimSpace(os.Getenv("APP_ENV"))
	if name == "" {
		name = EnvDevelopment
	}
	if name != EnvDevelopment && name != EnvProduction && name != EnvTesting {
		return nil, fmt.Errorf("APP_ENV must be one of development, production, testing; got %q", name)
	}

	cfg := defaults(name)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() {
		if c.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY is required in production")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if len(c.SecretKey) < MinSecretKeyLength {
			return fmt.Errorf("SECRET_KEY must be at least %d bytes long, got %d bytes; "+
				"generate a secure secret with: openssl rand -base64 32",
				MinSecretKeyLength, len(c.SecretKey))
		}
		for _, weak := range knownWeakSecrets {
			if c.SecretKey == weak {
				return fmt.Errorf("SECRET_KEY is a known default value and must not be used in production")
			}
		}
	} else if c.SecretKey == "" {
		c.SecretKey = devSecretKey
	}

	if !hasMinimumEntropy(c.SecretKey) {
		slog.Warn("SECRET_KEY has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort)
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive")
	}
	if c.AdminSessionLifetime <= 0 {
		return fmt.Errorf("ADMIN_SESSION_LIFETIME must be positive")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if the application is running in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UploadsPath returns the directory holding uploaded files.
func (c Config) UploadsPath() string {
	if c.UploadsDir != "" {
		return c.UploadsDir
	}
	return filepath.Join(c.StaticDir, "uploads")
}

// DatabaseDriver reports which driver DATABASE_URL points at.
func (c Config) DatabaseDriver() string {
	u := strings.ToLower(c.DatabaseURL)
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// DatabaseDSN returns the data source name handed to sql.Open.
func (c Config) DatabaseDSN() string {
	if c.DatabaseDriver() == DriverSQLite {
		return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	}
	return c.DatabaseURL
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
