// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings,
// storage paths, ingestion tuning (cache TTL, fetch deadlines, batch sizes),
// rate limiting, observability, and the Telegram delivery layer.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// TelegramConfig defines the optional Telegram delivery layer. An empty
// BotToken disables the bot entirely; the HTTP API keeps working.
type TelegramConfig struct {
	BotToken   string // TELEGRAM_BOT_TOKEN
	MiniAppURL string // MINI_APP_URL (category picker web page)
	Debug      bool   // TELEGRAM_DEBUG
}

// IngestConfig tunes the offer ingestion pipeline.
type IngestConfig struct {
	// CacheTTL is the freshness window for cached offers. Entries older
	// than this are ignored by cache reads and re-fetched from the source.
	CacheTTL time.Duration
	// FetchWait bounds how long one ingestion call waits for outstanding
	// source fetches. Fetches past the deadline keep running and warm the
	// cache for the next call.
	FetchWait time.Duration
	// FetchTimeout is the per-request HTTP timeout for a single source.
	FetchTimeout time.Duration
	// UpsertBatchSize caps the number of offers written per statement.
	UpsertBatchSize int
}

// DefaultsConfig carries the first-touch preference defaults.
type DefaultsConfig struct {
	MinDiscount int     // PREF_DEFAULT_MIN_DISCOUNT
	MinPrice    float64 // PREF_DEFAULT_MIN_PRICE
	MaxPrice    float64 // PREF_DEFAULT_MAX_PRICE (0 = unbounded)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool

	// App
	DBPath      string
	APIBasePath string

	Ingest   IngestConfig
	Defaults DefaultsConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig

	// Delivery
	Telegram TelegramConfig
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		ReadTimeout:       getDuration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getDuration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getInt("MAX_HEADER_BYTES", 1<<20),
		GinMode:           getEnv("GIN_MODE", "release"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", false),

		DBPath:      getEnv("DB_PATH", "data/ofertas.db"),
		APIBasePath: getEnv("API_BASE_PATH", "/api/v1"),

		Ingest: IngestConfig{
			CacheTTL:        getDuration("CACHE_TTL", 12*time.Hour),
			FetchWait:       getDuration("FETCH_WAIT", 30*time.Second),
			FetchTimeout:    getDuration("FETCH_TIMEOUT", 20*time.Second),
			UpsertBatchSize: getInt("UPSERT_BATCH_SIZE", 20),
		},
		Defaults: DefaultsConfig{
			MinDiscount: getInt("PREF_DEFAULT_MIN_DISCOUNT", 50),
			MinPrice:    getFloat("PREF_DEFAULT_MIN_PRICE", 0),
			MaxPrice:    getFloat("PREF_DEFAULT_MAX_PRICE", 0),
		},

		RateRPS:   getFloat("RATE_RPS", 5),
		RateBurst: getInt("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getBool("ENABLE_HSTS", false),
			HSTSMaxAge: getDuration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "go-deals-backend"),
			SampleRatio: getFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},

		Telegram: TelegramConfig{
			BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			MiniAppURL: getEnv("MINI_APP_URL", ""),
			Debug:      getBool("TELEGRAM_DEBUG", false),
		},
	}
	return cfg
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior deep inside the pipeline.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: PORT must not be empty")
	}
	if c.Ingest.CacheTTL <= 0 {
		return errors.New("config: CACHE_TTL must be positive")
	}
	if c.Ingest.FetchWait <= 0 {
		return errors.New("config: FETCH_WAIT must be positive")
	}
	if c.Ingest.UpsertBatchSize < 1 {
		return errors.New("config: UPSERT_BATCH_SIZE must be >= 1")
	}
	if c.Defaults.MinDiscount < 0 || c.Defaults.MinDiscount > 100 {
		return errors.New("config: PREF_DEFAULT_MIN_DISCOUNT must be in [0,100]")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return errors.New("config: OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	if c.RateRPS < 0 {
		return errors.New("config: RATE_RPS must be >= 0")
	}
	return nil
}

// getEnv returns the value of key, or def when unset/empty.
func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getInt parses key as int, returning def on absence or parse failure.
func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// getFloat parses key as float64, returning def on absence or parse failure.
func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// getBool parses common truthy/falsy spellings, returning def otherwise.
func getBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// getDuration parses key with time.ParseDuration, returning def on failure.
func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
