package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	APIBaseURL string `envconfig:"RECEIPTLY_API_URL" default:"https://api.receiptly.app"`
	APIToken   string `envconfig:"RECEIPTLY_API_TOKEN" required:"true"`
	APIPlan    string `envconfig:"RECEIPTLY_PLAN" default:"basic"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	TopProductsLimit int           `envconfig:"TOP_PRODUCTS_LIMIT" default:"5"`
	OrderSettleDelay time.Duration `envconfig:"ORDER_SETTLE_DELAY" default:"2s"`
	ExportDir        string        `envconfig:"EXPORT_DIR" default:"./exports"`

	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9090"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.APIToken == "" {
		return nil, errors.New("api token must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
