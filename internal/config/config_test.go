package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.Ingest.CacheTTL != 12*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.Ingest.CacheTTL)
	}
	if cfg.Ingest.FetchWait != 30*time.Second {
		t.Errorf("FetchWait = %v", cfg.Ingest.FetchWait)
	}
	if cfg.Ingest.UpsertBatchSize != 20 {
		t.Errorf("UpsertBatchSize = %d", cfg.Ingest.UpsertBatchSize)
	}
	if cfg.Defaults.MinDiscount != 50 {
		t.Errorf("MinDiscount = %d", cfg.Defaults.MinDiscount)
	}
	if cfg.Defaults.MaxPrice != 0 {
		t.Errorf("MaxPrice = %v", cfg.Defaults.MaxPrice)
	}
	if cfg.CORS.AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v, want nil", cfg.CORS.AllowedOrigins)
	}
	if cfg.Telegram.BotToken != "" {
		t.Errorf("BotToken = %q, want empty", cfg.Telegram.BotToken)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "6h")
	t.Setenv("FETCH_WAIT", "15s")
	t.Setenv("UPSERT_BATCH_SIZE", "50")
	t.Setenv("PREF_DEFAULT_MIN_DISCOUNT", "70")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Ingest.CacheTTL != 6*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.Ingest.CacheTTL)
	}
	if cfg.Ingest.FetchWait != 15*time.Second {
		t.Errorf("FetchWait = %v", cfg.Ingest.FetchWait)
	}
	if cfg.Ingest.UpsertBatchSize != 50 {
		t.Errorf("UpsertBatchSize = %d", cfg.Ingest.UpsertBatchSize)
	}
	if cfg.Defaults.MinDiscount != 70 {
		t.Errorf("MinDiscount = %d", cfg.Defaults.MinDiscount)
	}
	if cfg.RateRPS != 2.5 {
		t.Errorf("RateRPS = %v", cfg.RateRPS)
	}
	if !cfg.LogPretty {
		t.Error("LogPretty = false")
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.CORS.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("UPSERT_BATCH_SIZE", "lots")
	t.Setenv("RATE_RPS", "fast")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg := Load()

	if cfg.Ingest.CacheTTL != 12*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.Ingest.CacheTTL)
	}
	if cfg.Ingest.UpsertBatchSize != 20 {
		t.Errorf("UpsertBatchSize = %d", cfg.Ingest.UpsertBatchSize)
	}
	if cfg.RateRPS != 5 {
		t.Errorf("RateRPS = %v", cfg.RateRPS)
	}
	if cfg.LogPretty {
		t.Error("LogPretty = true")
	}
}

func TestValidate(t *testing.T) {
	base := Load()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty port", func(c *Config) { c.Port = "" }, false},
		{"zero cache ttl", func(c *Config) { c.Ingest.CacheTTL = 0 }, false},
		{"zero fetch wait", func(c *Config) { c.Ingest.FetchWait = 0 }, false},
		{"zero batch size", func(c *Config) { c.Ingest.UpsertBatchSize = 0 }, false},
		{"discount above 100", func(c *Config) { c.Defaults.MinDiscount = 101 }, false},
		{"negative discount", func(c *Config) { c.Defaults.MinDiscount = -1 }, false},
		{"sample ratio above 1", func(c *Config) { c.OTEL.SampleRatio = 1.5 }, false},
		{"negative rate", func(c *Config) { c.RateRPS = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
