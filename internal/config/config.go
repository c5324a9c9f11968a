package config

import (
	"os"
	"strconv"
	"time"

	"labflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	AI         AIConfig
	Server     ServerConfig
	Literature LiteratureConfig
	Upload     UploadConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// AIConfig holds AI/LLM related settings. Analysis works without a key;
// only the analyze endpoint requires one.
type AIConfig struct {
	OpenAIKey   string
	OpenAIModel string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	OpsPort string
	GinMode string
}

// LiteratureConfig holds external paper-search settings
type LiteratureConfig struct {
	CrossrefURL string
	ArxivURL    string
	MaxResults  int
	Timeout     time.Duration
}

// UploadConfig holds file import settings
type UploadConfig struct {
	Dir       string
	MaxSizeMB int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		AI: AIConfig{
			OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
			OpenAIModel: getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 2000),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
			Timeout:     getEnvDurationOrDefault("AI_TIMEOUT", 60*time.Second),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			OpsPort: getEnvOrDefault("OPS_PORT", "6060"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Literature: LiteratureConfig{
			CrossrefURL: getEnvOrDefault("CROSSREF_URL", "https://api.crossref.org/works"),
			ArxivURL:    getEnvOrDefault("ARXIV_URL", "http://export.arxiv.org/api/query"),
			MaxResults:  getEnvIntOrDefault("PAPER_SEARCH_LIMIT", 10),
			Timeout:     getEnvDurationOrDefault("PAPER_SEARCH_TIMEOUT", 20*time.Second),
		},
		Upload: UploadConfig{
			Dir:       getEnvOrDefault("UPLOAD_DIR", "./uploads"),
			MaxSizeMB: getEnvIntOrDefault("UPLOAD_MAX_MB", 20),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
