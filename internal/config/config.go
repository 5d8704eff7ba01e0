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
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Push     PushConfig     `json:"push"`
	SMS      SMSConfig      `json:"sms"`
	Search   SearchConfig   `json:"search"`
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

type PushConfig struct {
	Endpoint  string `json:"endpoint"`
	ServerKey string `json:"server_key,omitempty"`
}

// SMSConfig holds Twilio-style carrier credentials. Leaving them empty is a
// valid configuration: the SMS channel is skipped, not errored.
type SMSConfig struct {
	AccountSID string `json:"account_sid,omitempty"`
	AuthToken  string `json:"auth_token,omitempty"`
	FromNumber string `json:"from_number,omitempty"`
}

func (c SMSConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// SearchConfig tunes the proximity pipeline. StorePrecision is the geohash
// length written on incidents, QueryPrecision the length computed for a
// search point, OuterPrefixLen the coarser prefix bounding candidate range
// scans.
type SearchConfig struct {
	RadiusKM       float64       `json:"radius_km"`
	StorePrecision int           `json:"store_precision"`
	QueryPrecision int           `json:"query_precision"`
	OuterPrefixLen int           `json:"outer_prefix_len"`
	CacheTTL       time.Duration `json:"cache_ttl"`
	FanoutPoolSize int           `json:"fanout_pool_size"`
	DefaultLat     float64       `json:"default_lat"`
	DefaultLng     float64       `json:"default_lng"`
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
			Database:        getEnv("POSTGRES_DB", "roadx_db"),
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
		Push: PushConfig{
			Endpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			ServerKey: getEnv("FCM_SERVER_KEY", ""),
		},
		SMS: SMSConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		Search: SearchConfig{
			RadiusKM:       getEnvFloat("SEARCH_RADIUS_KM", 5.0),
			StorePrecision: getEnvInt("SEARCH_STORE_PRECISION", 9),
			QueryPrecision: getEnvInt("SEARCH_QUERY_PRECISION", 7),
			OuterPrefixLen: getEnvInt("SEARCH_OUTER_PREFIX_LEN", 4),
			CacheTTL:       getEnvDuration("SEARCH_CACHE_TTL", 30*time.Second),
			FanoutPoolSize: getEnvInt("FANOUT_POOL_SIZE", 8),
			DefaultLat:     getEnvFloat("DEFAULT_LAT", 19.0760),
			DefaultLng:     getEnvFloat("DEFAULT_LNG", 72.8777),
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
		slog.Bool("sms_configured", cfg.SMS.Configured()))

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}

	if c.Search.RadiusKM <= 0 {
		return errors.New("SEARCH_RADIUS_KM must be positive")
	}

	if c.Search.OuterPrefixLen < 1 || c.Search.OuterPrefixLen > c.Search.QueryPrecision {
		return errors.New("SEARCH_OUTER_PREFIX_LEN must be in [1, SEARCH_QUERY_PRECISION]")
	}

	if c.Search.QueryPrecision > c.Search.StorePrecision {
		return errors.New("SEARCH_QUERY_PRECISION must not exceed SEARCH_STORE_PRECISION")
	}

	if c.Search.FanoutPoolSize < 1 {
		return errors.New("FANOUT_POOL_SIZE must be at least 1")
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
