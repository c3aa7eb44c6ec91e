// Package config loads runtime configuration for the TaskKeeper client,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the TaskKeeper client.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN (pgx) of the remote store. Empty runs the
//     client against an in-memory store (standalone mode).
//   - PrefsDSN: SQLite DSN of the on-device preference database.
//   - AIBaseURL / AIAPIKey / AITimeout: AI helper endpoints.
//   - BotToken / InitData / InitDataMaxAge: host launch data validation.
//   - LaunchToken / LaunchSecret: signed launcher token, used when no host
//     init data is available.
//   - S3*: object storage for client avatars.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabaseDSN    string
	PrefsDSN       string
	AIBaseURL      string
	AIAPIKey       string
	AITimeout      time.Duration
	BotToken       string
	InitData       string
	InitDataMaxAge time.Duration
	LaunchToken    string
	LaunchSecret   string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	LogLevel       string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secrets below are placeholders and must be overridden in prod.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.PrefsDSN = "prefs.db"
	c.AIBaseURL = "http://127.0.0.1:8787/api"
	c.AIAPIKey = ""
	c.AITimeout = 30 * time.Second
	c.InitDataMaxAge = 24 * time.Hour
	c.LaunchSecret = "launchSecret"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "avatars"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
}

// Standalone reports whether no remote store is configured.
func (c *Config) Standalone() bool {
	return c.DatabaseDSN == ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
