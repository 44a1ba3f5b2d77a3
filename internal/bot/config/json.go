package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sharebot/internal/flagx"
	"github.com/dmitrijs2005/sharebot/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// accept both "7s" and integer nanoseconds.
type JsonConfig struct {
	TelegramToken  string         `json:"telegram_token"`
	ChannelID      int64          `json:"channel_id"`
	DatabaseDSN    string         `json:"database_dsn"`
	HealthAddr     string         `json:"health_addr"`
	BatchDelay     timex.Duration `json:"batch_delay"`
	Workers        int            `json:"workers"`
	LogLevel       string         `json:"log_level"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Zero values
// in the file leave the current setting untouched.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&config.TelegramToken, c.TelegramToken)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.HealthAddr, c.HealthAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.ChannelID != 0 {
		config.ChannelID = c.ChannelID
	}
	if c.BatchDelay.Duration != 0 {
		config.BatchDelay = c.BatchDelay.Duration
	}
	if c.Workers != 0 {
		config.Workers = c.Workers
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
