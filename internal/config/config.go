package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nobita6986/BatchTranscriber/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DBPath        string
	MediaDir      string
	GeminiModel   string
	DefaultAPIKey string
	Concurrency   int
	LogLevel      string
	LogFormat     string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", constants.DefaultPort),
		DBPath:        getEnv("DB_PATH", constants.DefaultDBPath),
		MediaDir:      getEnv("MEDIA_DIR", constants.DefaultMediaDir),
		GeminiModel:   getEnv("GEMINI_MODEL", constants.DefaultGeminiModel),
		DefaultAPIKey: getEnv("GEMINI_API_KEY", ""),
		Concurrency:   getEnvInt("CONCURRENCY", constants.DefaultConcurrency),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.MediaDir == "" {
		errors = append(errors, "MEDIA_DIR cannot be empty")
	}

	if c.GeminiModel == "" {
		errors = append(errors, "GEMINI_MODEL cannot be empty")
	}

	if c.Concurrency < constants.MinConcurrency || c.Concurrency > constants.MaxConcurrency {
		errors = append(errors, fmt.Sprintf("CONCURRENCY must be between %d and %d, got: %d",
			constants.MinConcurrency, constants.MaxConcurrency, c.Concurrency))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
