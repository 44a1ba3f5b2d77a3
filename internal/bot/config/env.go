package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays values from the process environment.
//
// Recognized variables: TELEGRAM_TOKEN, CHANNEL_ID, DATABASE_URL,
// HEALTH_ADDR (or PORT), BATCH_DELAY, WORKERS, LOG_LEVEL, S3_ROOT_USER,
// S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get("TELEGRAM_TOKEN"); ok {
		config.TelegramToken = v
	}
	if v, ok := get("CHANNEL_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CHANNEL_ID must be numeric: %w", err)
		}
		config.ChannelID = id
	}
	if v, ok := get("DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get("PORT"); ok {
		config.HealthAddr = ":" + v
	}
	if v, ok := get("HEALTH_ADDR"); ok {
		config.HealthAddr = v
	}
	if v, ok := get("BATCH_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BATCH_DELAY: %w", err)
		}
		config.BatchDelay = d
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORKERS must be numeric: %w", err)
		}
		config.Workers = n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := get("S3_ROOT_USER"); ok {
		config.S3RootUser = v
	}
	if v, ok := get("S3_ROOT_PASSWORD"); ok {
		config.S3RootPassword = v
	}
	if v, ok := get("S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := get("S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := get("S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
	return nil
}
