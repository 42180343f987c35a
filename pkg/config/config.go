package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Upstream REST backend serving currencies, rates, and orders.
	BackendBaseURL string
	BackendTimeout time.Duration

	// Durable local cache storage (SQLite file).
	StoragePath string

	// Currency cache tuning.
	RateCacheDuration   time.Duration
	RateRefreshInterval time.Duration
	Locale              string

	// Rate limiting, in ulule/limiter format (e.g. "100-M").
	RateLimit string

	// Optional rotating log file; empty means stdout only.
	LogFile string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:3000/api")
	viper.SetDefault("BACKEND_TIMEOUT", "10s")
	viper.SetDefault("STORAGE_PATH", "data/admin-cache.db")
	viper.SetDefault("RATE_CACHE_DURATION", "5m")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "5m")
	viper.SetDefault("LOCALE", "en-US")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("LOG_FILE", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.BackendBaseURL = viper.GetString("BACKEND_BASE_URL")
	if cfg.BackendBaseURL == "" {
		log.Println("Warning: BACKEND_BASE_URL environment variable not set.")
	}

	backendTimeout, err := time.ParseDuration(viper.GetString("BACKEND_TIMEOUT"))
	if err != nil {
		backendTimeout = 10 * time.Second
		log.Printf("Warning: invalid BACKEND_TIMEOUT, defaulting to %s\n", backendTimeout)
	}
	cfg.BackendTimeout = backendTimeout

	cfg.StoragePath = viper.GetString("STORAGE_PATH")

	cacheDuration, err := time.ParseDuration(viper.GetString("RATE_CACHE_DURATION"))
	if err != nil {
		cacheDuration = 5 * time.Minute
		log.Printf("Warning: invalid RATE_CACHE_DURATION, defaulting to %s\n", cacheDuration)
	}
	cfg.RateCacheDuration = cacheDuration

	refreshInterval, err := time.ParseDuration(viper.GetString("RATE_REFRESH_INTERVAL"))
	if err != nil {
		refreshInterval = 5 * time.Minute
		log.Printf("Warning: invalid RATE_REFRESH_INTERVAL, defaulting to %s\n", refreshInterval)
	}
	cfg.RateRefreshInterval = refreshInterval

	cfg.Locale = viper.GetString("LOCALE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.LogFile = viper.GetString("LOG_FILE")

	return cfg, nil
}
