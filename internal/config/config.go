// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	// EnvListenAddr names the variable holding the HTTP listen address.
	EnvListenAddr = "PROTOTYPEHUB_LISTEN_ADDR"
	// DefaultListenAddr is used when EnvListenAddr is unset or empty.
	DefaultListenAddr = "127.0.0.1:8080"
)

// ErrMissingToken is returned by Load when GITHUB_TOKEN is absent or blank.
var ErrMissingToken = errors.New("GITHUB_TOKEN is required")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken    string
	ListenAddr     string
	LogLevel       slog.Level
	RateLimitCheck bool
}

// Load reads configuration from environment variables and returns a validated Config.
// GITHUB_TOKEN is required; Load fails with ErrMissingToken when it is unset so the
// process exits before serving any request.
// Optional variables with defaults: PROTOTYPEHUB_LISTEN_ADDR (127.0.0.1:8080),
// PROTOTYPEHUB_LOG_LEVEL (info), PROTOTYPEHUB_RATE_LIMIT_CHECK (true).
func Load() (*Config, error) {
	token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	if token == "" {
		return nil, ErrMissingToken
	}

	listenAddr := DefaultListenAddr
	if v, ok := os.LookupEnv(EnvListenAddr); ok && v != "" {
		listenAddr = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("PROTOTYPEHUB_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PROTOTYPEHUB_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	rateLimitCheck := true
	if v, ok := os.LookupEnv("PROTOTYPEHUB_RATE_LIMIT_CHECK"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PROTOTYPEHUB_RATE_LIMIT_CHECK has invalid boolean %q: %w", v, err)
		}
		rateLimitCheck = parsed
	}

	return &Config{
		GitHubToken:    token,
		ListenAddr:     listenAddr,
		LogLevel:       logLevel,
		RateLimitCheck: rateLimitCheck,
	}, nil
}
