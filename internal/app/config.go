package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the gateway and the worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:"127.0.0.1:8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionKey string        `envconfig:"SESSION_KEY" default:"holding:session"`
	DraftTTL   time.Duration `envconfig:"DRAFT_TTL" default:"168h"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"https://africanut-backend-postgres-production.up.railway.app"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`

	StoreCompanyID      string `envconfig:"STORE_COMPANY_ID" default:"4809480a-c8cb-4990-afd7-e9337993825e"`
	StoreWhatsAppNumber string `envconfig:"STORE_WHATSAPP_NUMBER" default:"237620370286"`

	WorkerEmail         string   `envconfig:"WORKER_EMAIL"`
	WorkerPassword      string   `envconfig:"WORKER_PASSWORD"`
	WorkerIntegrityCron string   `envconfig:"WORKER_INTEGRITY_CRON" default:"0 2 * * *"`
	WorkerCompanies     []string `envconfig:"WORKER_COMPANIES"`
	WorkerConcurrency   int      `envconfig:"WORKER_CONCURRENCY" default:"2"`
	WorkerMetricsAddr   string   `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	RateLimitPerMin int `envconfig:"RATE_LIMIT_PER_MIN" default:"60"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) url", c.BackendURL)
	}
	if c.DraftTTL <= 0 {
		return errors.New("draft ttl must be positive")
	}
	if c.RateLimitPerMin <= 0 {
		return errors.New("rate limit must be positive")
	}
	if c.WorkerEmail != "" && c.WorkerPassword == "" {
		return errors.New("worker password must be provided with worker email")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
