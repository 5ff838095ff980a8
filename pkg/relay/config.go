// Copyright 2024-2026 Aiku AI

package relay

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the daemon configuration, read from the environment. The
// API token is the only required value; everything else has a default.
type Config struct {
	Token        string        `env:"TELEGRAM_API_TOKEN,required"`
	DatabasePath string        `env:"RELAY_DATABASE_PATH" envDefault:"relay.db"`
	PollTimeout  time.Duration `env:"RELAY_POLL_TIMEOUT" envDefault:"1s"`
	PollInterval time.Duration `env:"RELAY_POLL_INTERVAL" envDefault:"1s"`
	// MessagesPath optionally points at a YAML file overriding reply
	// strings from the embedded catalog.
	MessagesPath string `env:"RELAY_MESSAGES_FILE"`
	LogLevel     string `env:"RELAY_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
