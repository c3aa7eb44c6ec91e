package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/timex"
)

// JsonConfig is the DTO read from the JSON config file. Pointer fields tell
// "absent" from "empty", so a file only overrides the keys it actually sets.
type JsonConfig struct {
	DatabaseDSN    *string         `json:"database_dsn"`
	PrefsDSN       *string         `json:"prefs_dsn"`
	AIBaseURL      *string         `json:"ai_base_url"`
	AIAPIKey       *string         `json:"ai_api_key"`
	AITimeout      *timex.Duration `json:"ai_timeout"`
	BotToken       *string         `json:"bot_token"`
	InitDataMaxAge *timex.Duration `json:"init_data_max_age"`
	LaunchSecret   *string         `json:"launch_secret"`
	S3RootUser     *string         `json:"s3_root_user"`
	S3RootPassword *string         `json:"s3_root_password"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics: a broken config should stop startup, not be silently ignored.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.PrefsDSN, jc.PrefsDSN)
	setString(&cfg.AIBaseURL, jc.AIBaseURL)
	setString(&cfg.AIAPIKey, jc.AIAPIKey)
	setString(&cfg.BotToken, jc.BotToken)
	setString(&cfg.LaunchSecret, jc.LaunchSecret)
	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.AITimeout != nil {
		cfg.AITimeout = jc.AITimeout.Duration
	}
	if jc.InitDataMaxAge != nil {
		cfg.InitDataMaxAge = jc.InitDataMaxAge.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
