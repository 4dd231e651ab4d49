package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Redis pub/sub bridge for realtime fan-out across instances.
	// Empty disables the bridge; the in-process hub still works.
	RedisURL string

	// External payment processor.
	ProcessorBaseURL     string
	ProcessorTimeout     time.Duration
	ProcessorMaxAttempts int

	// Realtime notifier burst coalescing window.
	CoalescingWindow time.Duration

	// Background reconciliation.
	ReconcilerInterval      time.Duration
	StaleSettlementDeadline time.Duration

	// Rate limit in ulule/limiter format, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("PROCESSOR_BASE_URL", "")
	viper.SetDefault("PROCESSOR_TIMEOUT", "10s")
	viper.SetDefault("PROCESSOR_MAX_ATTEMPTS", 3)
	viper.SetDefault("COALESCING_WINDOW", "250ms")
	viper.SetDefault("RECONCILER_INTERVAL", "5s")
	viper.SetDefault("STALE_SETTLEMENT_DEADLINE", "2m")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.ProcessorBaseURL = viper.GetString("PROCESSOR_BASE_URL")
	if cfg.ProcessorBaseURL == "" {
		log.Println("Warning: PROCESSOR_BASE_URL not set. Settlements cannot be executed.")
	}

	cfg.ProcessorTimeout = parseDurationOr("PROCESSOR_TIMEOUT", 10*time.Second)
	cfg.ProcessorMaxAttempts = viper.GetInt("PROCESSOR_MAX_ATTEMPTS")
	if cfg.ProcessorMaxAttempts < 1 {
		cfg.ProcessorMaxAttempts = 1
	}

	cfg.CoalescingWindow = parseDurationOr("COALESCING_WINDOW", 250*time.Millisecond)
	cfg.ReconcilerInterval = parseDurationOr("RECONCILER_INTERVAL", 5*time.Second)
	cfg.StaleSettlementDeadline = parseDurationOr("STALE_SETTLEMENT_DEADLINE", 2*time.Minute)
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
