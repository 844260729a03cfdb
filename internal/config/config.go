package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port                   int    `envconfig:"PORT" default:"3000"`
	LogLevel               string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL            string `envconfig:"DATABASE_URL" required:"true"`
	AnalysisURL            string `envconfig:"ANALYSIS_URL" default:"http://localhost:8000"`
	AnalysisTimeoutSeconds int    `envconfig:"ANALYSIS_TIMEOUT_SECONDS" default:"60"`
	SessionSecret          string `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTLHours        int    `envconfig:"SESSION_TTL_HOURS" default:"168"`
	CookieSecure           bool   `envconfig:"COOKIE_SECURE" default:"false"`
	DemoLoginEnabled       bool   `envconfig:"DEMO_LOGIN_ENABLED" default:"false"`
	MigrateOnStart         bool   `envconfig:"MIGRATE_ON_START" default:"false"`
	MaxUploadMB            int64  `envconfig:"MAX_UPLOAD_MB" default:"5"`
	Version                string `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
