package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	// Session tokens are HS256-signed with SessionSecret and expire after
	// SessionTTLMinutes.
	SessionSecret     string
	SessionTTLMinutes int

	// Shared secret for the scheduled notification sweep.
	CronKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Staleness bound of the cached permission set, in seconds.
	PermCacheTTLSeconds int

	// Login throttling (fixed window, keyed by client IP).
	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	// External identity-provider admin API.
	IDPBaseURL  string
	IDPAdminKey string

	// Products whose lot expires within this horizon trigger a notification.
	ExpiryHorizonDays int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		SessionSecret:          os.Getenv("SESSION_SECRET"),
		SessionTTLMinutes:      envIntDefault("SESSION_TTL_MINUTES", 720),
		CronKey:                os.Getenv("CRON_KEY"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
		PermCacheTTLSeconds:    envIntDefault("PERM_CACHE_TTL_SECONDS", 30),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		IDPBaseURL:             os.Getenv("IDP_BASE_URL"),
		IDPAdminKey:            os.Getenv("IDP_ADMIN_KEY"),
		ExpiryHorizonDays:      envIntDefault("EXPIRY_HORIZON_DAYS", 30),
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) PermCacheTTL() time.Duration {
	return time.Duration(c.PermCacheTTLSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c Config) ExpiryHorizon() time.Duration {
	return time.Duration(c.ExpiryHorizonDays) * 24 * time.Hour
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
