package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("RECEIPTLY_API_TOKEN", "secret-token")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppAddr != ":8080" {
		t.Fatalf("AppAddr = %q", cfg.AppAddr)
	}
	if cfg.APIBaseURL != "https://api.receiptly.app" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APIPlan != "basic" {
		t.Fatalf("APIPlan = %q", cfg.APIPlan)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.OrderSettleDelay != 2*time.Second {
		t.Fatalf("OrderSettleDelay = %v", cfg.OrderSettleDelay)
	}
	if cfg.WorkerMetricsAddr != ":9090" {
		t.Fatalf("WorkerMetricsAddr = %q", cfg.WorkerMetricsAddr)
	}
	if cfg.IsProduction() {
		t.Fatal("development config must not report production")
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("RECEIPTLY_API_TOKEN", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when the API token is missing")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RECEIPTLY_API_TOKEN", "secret-token")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TOP_PRODUCTS_LIMIT", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("APP_ENV=production must report production")
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("LogFormat = %q", cfg.LogFormat)
	}
	if cfg.TopProductsLimit != 10 {
		t.Fatalf("TopProductsLimit = %d", cfg.TopProductsLimit)
	}
}
