package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Locator   LocatorConfig   `yaml:"locator"`
	Places    PlacesConfig    `yaml:"places"`
	Storage   StorageConfig   `yaml:"storage"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig guards the API with HS256 bearer tokens. An empty secret disables the guard.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
}

// AnalyticsConfig tunes dashboard rendering.
type AnalyticsConfig struct {
	MoodSource  string        `yaml:"moodSource"`
	ReflowDelay time.Duration `yaml:"reflowDelay"`
	BoardTTL    time.Duration `yaml:"boardTtl"`
}

// LocatorConfig tunes the facility locator sessions.
type LocatorConfig struct {
	DefaultType       string        `yaml:"defaultType"`
	DefaultRadius     int           `yaml:"defaultRadius"`
	MaxRadius         int           `yaml:"maxRadius"`
	FallbackLat       float64       `yaml:"fallbackLat"`
	FallbackLng       float64       `yaml:"fallbackLng"`
	DisableFallback   bool          `yaml:"disableFallback"`
	LocatingTimeout   time.Duration `yaml:"locatingTimeout"`
	HighlightDuration time.Duration `yaml:"highlightDuration"`
	SearchTimeout     time.Duration `yaml:"searchTimeout"`
	SessionTTL        time.Duration `yaml:"sessionTtl"`
	AsyncSearch       bool          `yaml:"asyncSearch"`
}

// PlacesConfig contains Google Places settings and the response cache.
type PlacesConfig struct {
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	CacheTTL          time.Duration `yaml:"cacheTtl"`
	Valkey            ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// StorageConfig holds the chart payload store settings.
type StorageConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load layers defaults, the YAML file, a .env file and the process environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("PORT"); v != "" && os.Getenv("HTTP_ADDRESS") == "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}

	if v := os.Getenv("ANALYTICS_MOOD_SOURCE"); v != "" {
		cfg.Analytics.MoodSource = v
	}
	envDuration("ANALYTICS_REFLOW_DELAY", &cfg.Analytics.ReflowDelay)
	envDuration("ANALYTICS_BOARD_TTL", &cfg.Analytics.BoardTTL)

	if v := os.Getenv("LOCATOR_DEFAULT_TYPE"); v != "" {
		cfg.Locator.DefaultType = v
	}
	envInt("LOCATOR_DEFAULT_RADIUS", &cfg.Locator.DefaultRadius)
	envInt("LOCATOR_MAX_RADIUS", &cfg.Locator.MaxRadius)
	envFloat("LOCATOR_FALLBACK_LAT", &cfg.Locator.FallbackLat)
	envFloat("LOCATOR_FALLBACK_LNG", &cfg.Locator.FallbackLng)
	envBool("LOCATOR_DISABLE_FALLBACK", &cfg.Locator.DisableFallback)
	envDuration("LOCATOR_LOCATING_TIMEOUT", &cfg.Locator.LocatingTimeout)
	envDuration("LOCATOR_SEARCH_TIMEOUT", &cfg.Locator.SearchTimeout)
	envDuration("LOCATOR_SESSION_TTL", &cfg.Locator.SessionTTL)
	envBool("LOCATOR_ASYNC_SEARCH", &cfg.Locator.AsyncSearch)

	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Places.APIKey = v
	}
	if v := os.Getenv("PLACES_BASE_URL"); v != "" {
		cfg.Places.BaseURL = v
	}
	envDuration("PLACES_TIMEOUT", &cfg.Places.Timeout)
	envFloat("PLACES_RPS", &cfg.Places.RequestsPerSecond)
	envDuration("PLACES_CACHE_TTL", &cfg.Places.CacheTTL)
	envBool("PLACES_VALKEY_ENABLED", &cfg.Places.Valkey.Enabled)
	if v := os.Getenv("PLACES_VALKEY_ADDR"); v != "" {
		cfg.Places.Valkey.Addr = v
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 20 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Auth: AuthConfig{
			Issuer: "cyclecare",
		},
		Analytics: AnalyticsConfig{
			MoodSource:  "data",
			ReflowDelay: 250 * time.Millisecond,
			BoardTTL:    30 * time.Minute,
		},
		Locator: LocatorConfig{
			DefaultType:       "hospital",
			DefaultRadius:     5000,
			MaxRadius:         50000,
			FallbackLat:       20.5937,
			FallbackLng:       78.9629,
			LocatingTimeout:   5 * time.Second,
			HighlightDuration: 1500 * time.Millisecond,
			SearchTimeout:     15 * time.Second,
			SessionTTL:        30 * time.Minute,
		},
		Places: PlacesConfig{
			BaseURL:           "https://maps.googleapis.com/maps/api",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             4,
			CacheTTL:          10 * time.Minute,
			Valkey: ValkeyConfig{
				Prefix: "nearby",
			},
		},
		Storage: StorageConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.Analytics.MoodSource {
	case "data", "values":
	default:
		return fmt.Errorf("analytics.moodSource must be data or values, got %q", c.Analytics.MoodSource)
	}
	if c.Analytics.BoardTTL <= 0 {
		return errors.New("analytics.boardTtl must be positive")
	}
	if c.Analytics.ReflowDelay < 0 {
		return errors.New("analytics.reflowDelay cannot be negative")
	}
	switch c.Locator.DefaultType {
	case "hospital", "clinic", "pharmacy", "medical_store":
	default:
		return fmt.Errorf("locator.defaultType %q is not a facility type", c.Locator.DefaultType)
	}
	if c.Locator.DefaultRadius <= 0 || c.Locator.MaxRadius <= 0 {
		return errors.New("locator radii must be positive")
	}
	if c.Locator.DefaultRadius > c.Locator.MaxRadius {
		return errors.New("locator.defaultRadius cannot exceed locator.maxRadius")
	}
	if c.Locator.FallbackLat < -90 || c.Locator.FallbackLat > 90 || c.Locator.FallbackLng < -180 || c.Locator.FallbackLng > 180 {
		return errors.New("locator fallback coordinate is out of range")
	}
	if c.Locator.LocatingTimeout <= 0 || c.Locator.SearchTimeout <= 0 {
		return errors.New("locator timeouts must be positive")
	}
	if c.Places.CacheTTL < 0 {
		return errors.New("places.cacheTtl cannot be negative")
	}
	if c.Places.RequestsPerSecond < 0 {
		return errors.New("places.requestsPerSecond cannot be negative")
	}
	if c.Places.Valkey.Enabled && strings.TrimSpace(c.Places.Valkey.Addr) == "" {
		return errors.New("places.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	return nil
}
