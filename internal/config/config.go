package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	BatchConcurrency int

	DBPath   string
	DBDriver string

	// RedisAddr is optional; empty disables the verdict cache.
	RedisAddr string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	concurrencyStr := getEnv("BATCH_CONCURRENCY", "5")
	concurrency, err := strconv.Atoi(concurrencyStr)
	if err != nil || concurrency <= 0 {
		concurrency = 5
	}

	return &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		BatchConcurrency: concurrency,
		DBPath:           getEnv("DB_PATH", "./data/evaluations.db"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
	}
}

// Validate checks the settings evaluation cannot run without.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.OpenAIModel == "" {
		return fmt.Errorf("OPENAI_MODEL cannot be empty")
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
