// Package config provides configuration for the application
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds all configuration for the application
type Config struct {
	UsersAPI  UsersAPIConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
}

// UsersAPIConfig holds settings of the remote users backend
type UsersAPIConfig struct {
	BaseURL string
	Token   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// AdminConfig holds settings of the admin page
type AdminConfig struct {
	BasePath   string
	LoginURL   string
	SortLocale language.Tag
}

// RateLimitConfig holds per-IP rate limit settings
type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{}

	// Users backend configuration
	baseURL := strings.TrimSpace(os.Getenv("USERS_API_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("USERS_API_BASE_URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid USERS_API_BASE_URL: %q", baseURL)
	}
	cfg.UsersAPI.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.UsersAPI.Token = os.Getenv("USERS_API_TOKEN")

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")

	// Admin page configuration
	basePath := stringEnv("ADMIN_BASE_PATH", "/admin/users")
	if !strings.HasPrefix(basePath, "/") {
		return nil, fmt.Errorf("invalid ADMIN_BASE_PATH: %q must start with '/'", basePath)
	}
	cfg.Admin.BasePath = strings.TrimRight(basePath, "/")
	if cfg.Admin.BasePath == "" {
		return nil, fmt.Errorf("invalid ADMIN_BASE_PATH: root path is not allowed")
	}
	cfg.Admin.LoginURL = stringEnv("LOGIN_URL", "/login")

	tag, err := language.Parse(stringEnv("SORT_LOCALE", "en"))
	if err != nil {
		return nil, fmt.Errorf("invalid SORT_LOCALE: %w", err)
	}
	cfg.Admin.SortLocale = tag

	// Rate limit configuration
	perMinute, err := intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	if perMinute <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: must be positive")
	}
	cfg.RateLimit.RequestsPerMinute = perMinute

	return cfg, nil
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
