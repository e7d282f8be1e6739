package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// TMDB
	TMDBToken string
	TMDBURL   string // override for tests, defaults to the public API

	// Booknode
	BooknodeURL string // override for tests, defaults to the public site

	// Refresh
	RefreshIntervalMinutes int // how often the catalog refresh job runs (default: 60)

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/oeuvrestrack.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("REFRESH_INTERVAL_MINUTES", 60)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("BOOKNODE_URL", "https://booknode.com")
	viper.SetDefault("TMDB_URL", "https://api.themoviedb.org/3")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "oeuvrestrack")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		TMDBToken:              viper.GetString("TMDB_TOKEN"),
		TMDBURL:                viper.GetString("TMDB_URL"),
		BooknodeURL:            viper.GetString("BOOKNODE_URL"),
		RefreshIntervalMinutes: viper.GetInt("REFRESH_INTERVAL_MINUTES"),
		ServerPort:             viper.GetString("SERVER_PORT"),
		DatabaseFile:           filepath.Join(configDir, "oeuvrestrack.db"),
		LogLevel:               viper.GetString("LOG_LEVEL"),
	}

	if config.TMDBToken == "" {
		return nil, fmt.Errorf("TMDB_TOKEN is required")
	}

	return config, nil
}
