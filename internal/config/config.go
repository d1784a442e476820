package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string          `json:"env"`
	Http      HttpConfig      `json:"http"`
	Postgres  PostgresConfig  `json:"postgres"`
	Redis     RedisConfig     `json:"redis"`
	APIKey    string          `json:"api_key,omitempty"`
	Detection DetectionConfig `json:"detection"`
	Broadcast BroadcastConfig `json:"broadcast"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

// DetectionConfig holds the hazard relevance and alerting knobs. Defaults
// match live detection behavior; tests override freely.
type DetectionConfig struct {
	SearchRadiusKm  float64       `json:"search_radius_km"`
	CorridorMeters  float64       `json:"corridor_meters"`
	AlertCooldown   time.Duration `json:"alert_cooldown"`
	QueryTimeout    time.Duration `json:"query_timeout"`
	NearbyLimit     int           `json:"nearby_limit"`
	DuplicateMeters float64       `json:"duplicate_meters"`
	CacheTTL        time.Duration `json:"cache_ttl"`
}

type BroadcastConfig struct {
	WebhookURL string        `json:"webhook_url"`
	Disabled   bool          `json:"disabled"`
	SweepEvery time.Duration `json:"sweep_every"`
}

func Load(ctx context.Context) (*Config, error) {

	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "safetyshare_db"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		APIKey: getEnv("API_KEY", ""),
		Detection: DetectionConfig{
			SearchRadiusKm:  getEnvFloat("DETECT_RADIUS_KM", 5),
			CorridorMeters:  getEnvFloat("DETECT_CORRIDOR_METERS", 80),
			AlertCooldown:   getEnvDuration("ALERT_COOLDOWN", 10*time.Minute),
			QueryTimeout:    getEnvDuration("DETECT_QUERY_TIMEOUT", 2*time.Second),
			NearbyLimit:     getEnvInt("DETECT_NEARBY_LIMIT", 5),
			DuplicateMeters: getEnvFloat("REPORT_DUPLICATE_METERS", 50),
			CacheTTL:        getEnvDuration("HAZARD_CACHE_TTL", 30*time.Second),
		},
		Broadcast: BroadcastConfig{
			WebhookURL: getEnv("BROADCAST_WEBHOOK_URL", ""),
			Disabled:   getEnvBool("BROADCAST_DISABLED", false),
			SweepEvery: getEnvDuration("HAZARD_SWEEP_EVERY", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("postgres_db", cfg.Postgres.Database),
		slog.String("redis_addr", cfg.Redis.Addr),
	)

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}

	if c.Detection.SearchRadiusKm <= 0 || c.Detection.SearchRadiusKm > 50 {
		return errors.New("DETECT_RADIUS_KM must be in (0, 50]")
	}

	if c.Detection.QueryTimeout <= 0 {
		return errors.New("DETECT_QUERY_TIMEOUT must be positive")
	}

	if !c.Broadcast.Disabled && c.Broadcast.WebhookURL == "" {
		slog.Warn("BROADCAST_WEBHOOK_URL empty, broadcaster will idle")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
