package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

var knownFlags = []string{
	"-d", "-p", "-ai", "-ak", "-at", "-bot", "-init", "-token", "-secret",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint", "-log",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string            PostgreSQL DSN of the remote store
//	-p string            SQLite DSN of the preference database
//	-ai string           AI helper base URL
//	-ak string           AI helper API key
//	-at int              AI request timeout, seconds
//	-bot string          bot token used to validate host init data
//	-init string         raw host init data
//	-token string        signed launch token
//	-secret string       launch token secret
//	-s3-user string      S3 access key
//	-s3-password string  S3 secret key
//	-s3-bucket string    S3 bucket for avatars
//	-s3-region string    S3 region
//	-s3-endpoint string  S3 base endpoint
//	-log string          log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "remote database DSN")
	fs.StringVar(&cfg.PrefsDSN, "p", cfg.PrefsDSN, "preference database DSN")
	fs.StringVar(&cfg.AIBaseURL, "ai", cfg.AIBaseURL, "AI helper base URL")
	fs.StringVar(&cfg.AIAPIKey, "ak", cfg.AIAPIKey, "AI helper API key")
	aiTimeout := fs.Int("at", int(cfg.AITimeout.Seconds()), "AI request timeout (in seconds)")
	fs.StringVar(&cfg.BotToken, "bot", cfg.BotToken, "bot token")
	fs.StringVar(&cfg.InitData, "init", cfg.InitData, "host init data")
	fs.StringVar(&cfg.LaunchToken, "token", cfg.LaunchToken, "launch token")
	fs.StringVar(&cfg.LaunchSecret, "secret", cfg.LaunchSecret, "launch token secret")
	fs.StringVar(&cfg.S3RootUser, "s3-user", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "s3-password", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AITimeout = time.Duration(*aiTimeout) * time.Second
}
