// Package config handles configuration for the bot process,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrMissingValue is returned by Validate when a required setting is absent.
var ErrMissingValue = errors.New("missing required configuration value")

// Config holds runtime settings for the bot.
//
// Fields:
//   - TelegramToken: bot API token (required).
//   - ChannelID: numeric id of the private archive channel (required).
//   - DatabaseDSN: PostgreSQL DSN (pgx) (required).
//   - HealthAddr: bind address of the liveness endpoint.
//   - BatchDelay: debounce window after the last received file.
//   - Workers: size of the update handling pool.
//   - LogLevel: debug, info, warn or error.
//   - S3*: optional object storage for batch manifests; disabled when S3Bucket is empty.
type Config struct {
	TelegramToken  string
	ChannelID      int64
	DatabaseDSN    string
	HealthAddr     string
	BatchDelay     time.Duration
	Workers        int
	LogLevel       string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with development defaults. The three
// required values stay empty on purpose.
func (c *Config) LoadDefaults() {
	c.HealthAddr = ":8080"
	c.BatchDelay = 7 * time.Second
	c.Workers = 8
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// Validate reports the first missing required value.
func (c *Config) Validate() error {
	switch {
	case c.TelegramToken == "":
		return fmt.Errorf("%w: TELEGRAM_TOKEN", ErrMissingValue)
	case c.ChannelID == 0:
		return fmt.Errorf("%w: CHANNEL_ID", ErrMissingValue)
	case c.DatabaseDSN == "":
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingValue)
	}
	if c.BatchDelay <= 0 {
		return fmt.Errorf("batch delay must be positive, got %s", c.BatchDelay)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// ManifestsEnabled reports whether batch manifests should be mirrored to object storage.
func (c *Config) ManifestsEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
