package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the octoken service
type Config struct {
	// Server settings
	Port int

	// GitHub App settings
	GitHubAppID         string
	GitHubPrivateKey    string
	GitHubWebhookSecret string

	// GitHub OAuth settings (user login flow)
	OAuthClientID     string
	OAuthClientSecret string

	// Session settings
	SharedKey string

	// Storage settings
	DatabasePath string

	// Ledger settings
	LedgerRPCURL string

	// Frontend settings
	FrontendBaseURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	privateKey := normalizePrivateKey(os.Getenv("GITHUB_PRIVATE_KEY"))

	cfg := &Config{
		Port:                getEnvInt("PORT", 8000),
		GitHubAppID:         os.Getenv("GITHUB_APP_ID"),
		GitHubPrivateKey:    privateKey,
		GitHubWebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		OAuthClientID:       os.Getenv("GITHUB_OAUTH_CLIENT_ID"),
		OAuthClientSecret:   os.Getenv("GITHUB_OAUTH_SECRET"),
		SharedKey:           os.Getenv("SHARED_KEY"),
		DatabasePath:        getEnv("DATABASE_PATH", "octoken.db"),
		LedgerRPCURL:        getEnv("LEDGER_RPC_URL", "http://localhost:8899"),
		FrontendBaseURL:     getEnv("FRONTEND_BASE_URL", "http://localhost:5000"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizePrivateKey repairs PEM material that arrives through an env
// var with escaped or CRLF line endings, or wrapped in quotes.
func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// validate checks that all required configuration is present
func (c *Config) validate() error {
	if err := c.validateGitHubCredentials(); err != nil {
		return err
	}

	if c.SharedKey == "" {
		return fmt.Errorf("SHARED_KEY is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	if c.LedgerRPCURL == "" {
		return fmt.Errorf("LEDGER_RPC_URL must not be empty")
	}
	return nil
}

func (c *Config) validateGitHubCredentials() error {
	if c.GitHubAppID == "" {
		return fmt.Errorf("GITHUB_APP_ID is required")
	}
	if c.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY is required")
	}
	if c.GitHubWebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET is required")
	}
	if c.OAuthClientID == "" {
		return fmt.Errorf("GITHUB_OAUTH_CLIENT_ID is required")
	}
	if c.OAuthClientSecret == "" {
		return fmt.Errorf("GITHUB_OAUTH_SECRET is required")
	}
	return nil
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
