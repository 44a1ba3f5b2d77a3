package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/sharebot/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-t string   bot API token
//	-ch int     archive channel id
//	-d string   PostgreSQL DSN
//	-a string   liveness endpoint bind address (e.g., ":8080")
//	-w duration debounce window (e.g., "7s")
//	-n int      update handling workers
//	-l string   log level
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// Channel ids are negative, so pass them as -ch=-100123.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-t", "-ch", "-d", "-a", "-w", "-n", "-l", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("bot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.TelegramToken, "t", config.TelegramToken, "bot API token")
	fs.Int64Var(&config.ChannelID, "ch", config.ChannelID, "archive channel id")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.HealthAddr, "a", config.HealthAddr, "liveness endpoint address")
	fs.DurationVar(&config.BatchDelay, "w", config.BatchDelay, "debounce window after the last file")
	fs.IntVar(&config.Workers, "n", config.Workers, "update handling workers")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 manifest bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(args)
}
