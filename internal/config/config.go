// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	GithubToken      string        `mapstructure:"GITHUB_TOKEN"`
	GithubBaseURL    string        `mapstructure:"GITHUB_BASE_URL"`
	NotionToken      string        `mapstructure:"NOTION_TOKEN"`
	NotionDatabaseID string        `mapstructure:"NOTION_DATABASE_ID"`
	NotionBaseURL    string        `mapstructure:"NOTION_BASE_URL"`
	SyncConcurrency  int           `mapstructure:"SYNC_CONCURRENCY"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT"`
}

// LoadConfig reads configuration from .env files and environment variables.
func LoadConfig() (*Config, error) {
	// .env files are loaded into the process environment; variables already
	// set in the environment win.
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}

	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("GITHUB_BASE_URL", "")
	viper.SetDefault("NOTION_BASE_URL", "")
	viper.SetDefault("SYNC_CONCURRENCY", 1)
	viper.SetDefault("HTTP_TIMEOUT", "30s")

	// Bind environment variables. Keys without defaults must be bound
	// explicitly for Unmarshal to see them.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"GITHUB_TOKEN", "NOTION_TOKEN", "NOTION_DATABASE_ID"} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.GithubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if cfg.NotionToken == "" {
		return nil, errors.New("NOTION_TOKEN is a required configuration field")
	}
	if cfg.NotionDatabaseID == "" {
		return nil, errors.New("NOTION_DATABASE_ID is a required configuration field")
	}
	if cfg.SyncConcurrency < 1 {
		return nil, errors.New("SYNC_CONCURRENCY must be at least 1")
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, errors.New("HTTP_TIMEOUT must be a positive duration")
	}

	return &cfg, nil
}
