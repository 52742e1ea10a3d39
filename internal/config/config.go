package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	ServiceName string `validate:"required"`
	Version     string
	Environment string `validate:"oneof=dev development staging prod production"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`
	LogFormat   string `validate:"oneof=json text"`

	Port int `validate:"min=1,max=65535"`

	// DatabaseURL is optional; when empty the snapshot store is disabled.
	DatabaseURL string

	// Chat identities used by the extractor.
	BotName   string `validate:"required"`
	UserName  string `validate:"required"`
	MacroName string `validate:"required"`

	// Input locations.
	TranscriptPath string
	BookDir        string

	// Estimator confidence gate.
	MinSamples        int     `validate:"min=1"`
	MaxBreakHalfwidth float64 `validate:"gt=0,lte=1"`

	// Solver bounds.
	MaxLevel int `validate:"min=1"`

	// Resolver reload throttle.
	ReloadCooldownSec float64 `validate:"gte=0"`
	MaxReloadCalls    int     `validate:"gte=0"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:    getEnv("SERVICE_NAME", "enhance-bot"),
		Version:        getEnv("SERVICE_VERSION", "dev"),
		Environment:    getEnv("ENVIRONMENT", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		BotName:        getEnv("BOT_NAME", "플레이봇"),
		UserName:       getEnv("USER_NAME", ""),
		MacroName:      getEnv("MACRO_NAME", "매크로"),
		TranscriptPath: getEnv("TRANSCRIPT_PATH", ""),
		BookDir:        getEnv("BOOK_DIR", "data/weapon_trees"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.MinSamples, err = getEnvInt("MIN_SAMPLES", 200); err != nil {
		return nil, err
	}
	if cfg.MaxLevel, err = getEnvInt("MAX_LEVEL", 18); err != nil {
		return nil, err
	}
	if cfg.MaxReloadCalls, err = getEnvInt("MAX_RELOAD_CALLS", 2); err != nil {
		return nil, err
	}
	if cfg.MaxBreakHalfwidth, err = getEnvFloat("MAX_BREAK_HALFWIDTH", 0.02); err != nil {
		return nil, err
	}
	if cfg.ReloadCooldownSec, err = getEnvFloat("RELOAD_COOLDOWN_SEC", 30); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}
