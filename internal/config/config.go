package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	DatabaseURL string
	RedisAddr   string

	JWTSecret    string
	JWTExpiresIn time.Duration

	// Video abstraction layer (external video-metadata service).
	ValURL      string
	ValAPIKey   string
	ValCacheTTL time.Duration

	// Report warmup: cron spec for the scheduler and the edit window it
	// scans for recently changed courses.
	WarmCronSpec string
	WarmWindow   time.Duration
}

func Load() *Config {
	return &Config{
		Port:         envInt("PORT", 8080),
		DatabaseURL:  env("DATABASE_URL", "postgres://courseforge:courseforge@db:5432/courseforge?sslmode=disable"),
		RedisAddr:    env("REDIS_ADDR", "redis:6379"),
		JWTSecret:    env("JWT_SECRET", "change-me-in-production"),
		JWTExpiresIn: envDuration("JWT_EXPIRES_IN", 24*time.Hour),
		ValURL:       env("VAL_URL", ""),
		ValAPIKey:    env("VAL_API_KEY", ""),
		ValCacheTTL:  envDuration("VAL_CACHE_TTL", 15*time.Minute),
		WarmCronSpec: env("WARM_CRON_SPEC", "0 3 * * *"),
		WarmWindow:   envDuration("WARM_WINDOW", 24*time.Hour),
	}
}

// ValEnabled reports whether the VAL client is configured; without it the
// videos report section degrades to zero encoded videos.
func (c *Config) ValEnabled() bool {
	return c.ValURL != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
