package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	AdminAuthToken string `env:"ADMIN_AUTH_TOKEN"`
	AdminHTTPAddr  string `env:"ADMIN_HTTP_ADDR" envDefault:":8090"`

	LLMProvider        string        `env:"LLM_PROVIDER" envDefault:""`
	LLMAPIKey          string        `env:"LLM_API_KEY"`
	LLMModel           string        `env:"LLM_MODEL"`
	LLMBaseURL         string        `env:"LLM_BASE_URL"`
	FetchTimeoutSecs   int           `env:"CRAWLER_FETCH_TIMEOUT_SECONDS" envDefault:"20"`
	LLMTimeoutSecs     int           `env:"CRAWLER_LLM_TIMEOUT_SECONDS" envDefault:"45"`
	HealthPort         int           `env:"HEALTH_PORT" envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
