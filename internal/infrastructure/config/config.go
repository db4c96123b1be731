package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage and session driver names
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Upstream  UpstreamConfig
	Search    SearchConfig
	Auth      AuthConfig
	Storage   StorageConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"5001"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	APIPrefix   string   `envconfig:"API_PREFIX" default:"/api"`
	// CORSOrigins is a comma separated list; "*" allows any origin
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// UpstreamConfig configures the streamed completions provider.
// APIKey and Model are process-wide defaults used when a request omits them.
type UpstreamConfig struct {
	APIKey        string        `envconfig:"OPENROUTER_API_KEY"`
	Model         string        `envconfig:"OPENROUTER_MODEL" default:"stepfun/step-3.5-flash:free"`
	BaseURL       string        `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	HeaderTimeout time.Duration `envconfig:"OPENROUTER_HEADER_TIMEOUT" default:"30s"`
	StreamTimeout time.Duration `envconfig:"OPENROUTER_STREAM_TIMEOUT" default:"5m"`
	Referer       string        `envconfig:"OPENROUTER_REFERER"`
	Title         string        `envconfig:"OPENROUTER_TITLE" default:"Reze"`
}

// SearchConfig configures the research step providers.
type SearchConfig struct {
	GoogleAPIKey   string        `envconfig:"GOOGLE_API_KEY"`
	CseID          string        `envconfig:"GOOGLE_CSE_ID"`
	GoogleBaseURL  string        `envconfig:"GOOGLE_SEARCH_BASE_URL" default:"https://www.googleapis.com"`
	YouTubeBaseURL string        `envconfig:"YOUTUBE_BASE_URL" default:"https://www.googleapis.com"`
	Timeout        time.Duration `envconfig:"SEARCH_TIMEOUT" default:"15s"`
	WebResults     int           `envconfig:"SEARCH_WEB_RESULTS" default:"5"`
	VideoResults   int           `envconfig:"SEARCH_VIDEO_RESULTS" default:"3"`
}

// AuthConfig holds session configuration.
type AuthConfig struct {
	TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"168h"`
}

// StorageConfig selects the user and session stores.
type StorageConfig struct {
	Driver        string `envconfig:"STORAGE_DRIVER" default:"memory"`
	DSN           string `envconfig:"STORAGE_DSN" default:"reze.db"`
	SessionDriver string `envconfig:"SESSION_DRIVER" default:"memory"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "5001",
			Host:        "0.0.0.0",
			APIPrefix:   "/api",
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
		Upstream: UpstreamConfig{
			Model:         "stepfun/step-3.5-flash:free",
			BaseURL:       "https://openrouter.ai/api/v1",
			HeaderTimeout: 30 * time.Second,
			StreamTimeout: 5 * time.Minute,
			Title:         "Reze",
		},
		Search: SearchConfig{
			GoogleBaseURL:  "https://www.googleapis.com",
			YouTubeBaseURL: "https://www.googleapis.com",
			Timeout:        15 * time.Second,
			WebResults:     5,
			VideoResults:   3,
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Driver:        DriverMemory,
			DSN:           "reze.db",
			SessionDriver: DriverMemory,
			RedisAddr:     "localhost:6379",
		},
	}
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Storage.SessionDriver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unsupported SESSION_DRIVER %q", c.Storage.SessionDriver)
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with '/', got %q", c.Server.APIPrefix)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive")
	}
	if c.Search.WebResults < 1 || c.Search.WebResults > 10 {
		return fmt.Errorf("SEARCH_WEB_RESULTS must be between 1 and 10")
	}
	if c.Search.VideoResults < 0 || c.Search.VideoResults > 50 {
		return fmt.Errorf("SEARCH_VIDEO_RESULTS must be between 0 and 50")
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
