// Package config loads runtime configuration from the environment with an
// optional .env file. Values have sensible development defaults so the
// console runs with no configuration at all.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries all runtime settings for the console.
type Config struct {
	AppEnv string

	// StorageDir is where the session slots live.
	StorageDir string

	// UsersFile is the YAML directory table used when no database is set.
	UsersFile string

	// DatabaseURL, when non-empty, switches the directory to Postgres.
	DatabaseURL string

	TokenTTL    string
	BcryptCost  int
	VerifyDelay string

	WorkflowBaseURL string
	OTLPEndpoint    string
}

const (
	defaultTokenTTL    = 24 * time.Hour
	defaultVerifyDelay = 400 * time.Millisecond
	defaultBcryptCost  = 12
)

// Load reads configuration from a .env file (if present) and the
// environment, environment winning. Returns an error only for values that
// cannot be defaulted away.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// .env is optional; environment variables are enough on their own.
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE_DIR", ".mallops/session")
	v.SetDefault("USERS_FILE", "users.yaml")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", defaultBcryptCost)
	v.SetDefault("VERIFY_DELAY", "400ms")
	v.SetDefault("WORKFLOW_BASE_URL", "")
	v.SetDefault("OTLP_ENDPOINT", "")

	cfg := &Config{
		AppEnv:          v.GetString("APP_ENV"),
		StorageDir:      v.GetString("STORAGE_DIR"),
		UsersFile:       v.GetString("USERS_FILE"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		TokenTTL:        v.GetString("TOKEN_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		VerifyDelay:     v.GetString("VERIFY_DELAY"),
		WorkflowBaseURL: v.GetString("WORKFLOW_BASE_URL"),
		OTLPEndpoint:    v.GetString("OTLP_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StorageDir == "" {
		return fmt.Errorf("STORAGE_DIR must not be empty")
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// TokenTTLDuration parses TOKEN_TTL, falling back to 24h on an invalid or
// non-positive value.
func (c *Config) TokenTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return defaultTokenTTL
	}
	return d
}

// VerifyDelayDuration parses VERIFY_DELAY, falling back to 400ms on an
// invalid value. Zero disables the delay.
func (c *Config) VerifyDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.VerifyDelay)
	if err != nil || d < 0 {
		return defaultVerifyDelay
	}
	return d
}

// EffectiveBcryptCost returns BCRYPT_COST with 0 mapped to the default.
func (c *Config) EffectiveBcryptCost() int {
	if c.BcryptCost == 0 {
		return defaultBcryptCost
	}
	return c.BcryptCost
}
