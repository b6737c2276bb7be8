package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	ServerPort   string `env:"PORT" envDefault:"8080"`
	DatabaseType string `env:"DB_TYPE" envDefault:"sqlite"`
	DatabasePath string `env:"DB_PATH" envDefault:"./mathclash.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// GamesConfigPath points at an optional JSON file overriding the game catalog
	GamesConfigPath string `env:"GAMES_CONFIG"`

	// TokenSecret verifies learner tokens issued by the account service
	TokenSecret string `env:"TOKEN_SECRET"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	PersistRetryDelay  time.Duration `env:"PERSIST_RETRY_DELAY" envDefault:"500ms"`
	PersistTimeout     time.Duration `env:"PERSIST_TIMEOUT" envDefault:"10s"`

	// RateLimitPerMinute caps session starts and answers per learner; zero disables it
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	// Email (Amazon SES)
	AWSRegion    string `env:"AWS_REGION" envDefault:"us-east-1"`
	SESFromEmail string `env:"SES_FROM_EMAIL"`
	SESFromName  string `env:"SES_FROM_NAME" envDefault:"MathClash"`
	AppBaseURL   string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
