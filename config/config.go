package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Upstream      UpstreamConfig
	Session       SessionConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Directory     DirectoryConfig
	RateLimit     RateLimitConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

// UpstreamConfig describes the backend portal REST API this gateway fronts.
type UpstreamConfig struct {
	BaseURL        string
	TimeoutSeconds int
	MaxRetries     int
}

type SessionConfig struct {
	CookieDomain   string
	CookieSecure   bool
	CookieTTLHours int
	// ChallengeTTLMinutes bounds how long a sent OTP challenge stays
	// resumable before the citizen must request a new code.
	ChallengeTTLMinutes int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
	TracingEnabled    bool
}

type DirectoryConfig struct {
	CacheTTLSeconds int
	DebounceMillis  int
}

type RateLimitConfig struct {
	GeneralPerSecond float64
	GeneralBurst     int
	AuthPerSecond    float64
	AuthBurst        int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env if present; real env vars still win.
	_ = godotenv.Load() //nolint:errcheck

	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "")
	v.SetDefault("UPSTREAM_BASE_URL", "https://world-of-dc-backend.onrender.com")
	v.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 30)
	v.SetDefault("UPSTREAM_MAX_RETRIES", 3)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("COOKIE_TTL_HOURS", 24)
	v.SetDefault("OTP_CHALLENGE_TTL_MINUTES", 5)
	v.SetDefault("DIRECTORY_CACHE_TTL", 60)
	v.SetDefault("DIRECTORY_DEBOUNCE_MS", 300)
	v.SetDefault("RATE_LIMIT_GENERAL_PER_SECOND", 100.0)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 200)
	v.SetDefault("RATE_LIMIT_AUTH_PER_SECOND", 0.00667) // 2 req/5min
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 3)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "portal-gateway")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "world-of-dc")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Upstream: UpstreamConfig{
			BaseURL:        strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
			TimeoutSeconds: v.GetInt("UPSTREAM_TIMEOUT_SECONDS"),
			MaxRetries:     v.GetInt("UPSTREAM_MAX_RETRIES"),
		},
		Session: SessionConfig{
			CookieDomain:        v.GetString("COOKIE_DOMAIN"),
			CookieSecure:        v.GetBool("COOKIE_SECURE"),
			CookieTTLHours:      v.GetInt("COOKIE_TTL_HOURS"),
			ChallengeTTLMinutes: v.GetInt("OTP_CHALLENGE_TTL_MINUTES"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
			TracingEnabled:    v.GetString("O11Y_EXPORTER_ENDPOINT") != "",
		},
		Directory: DirectoryConfig{
			CacheTTLSeconds: v.GetInt("DIRECTORY_CACHE_TTL"),
			DebounceMillis:  v.GetInt("DIRECTORY_DEBOUNCE_MS"),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: v.GetFloat64("RATE_LIMIT_GENERAL_PER_SECOND"),
			GeneralBurst:     v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthPerSecond:    v.GetFloat64("RATE_LIMIT_AUTH_PER_SECOND"),
			AuthBurst:        v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("UPSTREAM_BASE_URL must be an http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	if c.Session.CookieTTLHours <= 0 {
		return fmt.Errorf("COOKIE_TTL_HOURS must be positive")
	}
	if c.Session.ChallengeTTLMinutes <= 0 {
		return fmt.Errorf("OTP_CHALLENGE_TTL_MINUTES must be positive")
	}
	if c.Directory.DebounceMillis < 0 {
		return fmt.Errorf("DIRECTORY_DEBOUNCE_MS must not be negative")
	}
	return nil
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}
