package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string // empty runs on in-memory stores
	RedisURL    string
	AppName     string
	FrontendURL string
	LogLevel    string

	StatsPolicy       string // write_through or lazy_ttl
	StatsCacheTTL     time.Duration
	StatsCacheBackend string // memory or redis

	DBMaxOpenConns int
	DBMaxIdleConns int
}

var AppConfig *Config

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	AppConfig = &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		AppName:           getEnv("APP_NAME", "TripSplit"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StatsPolicy:       getEnv("STATS_POLICY", "write_through"),
		StatsCacheTTL:     getDuration("STATS_CACHE_TTL", 30*time.Second),
		StatsCacheBackend: getEnv("STATS_CACHE_BACKEND", "memory"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
	}
	return AppConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", raw)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", raw)
		return fallback
	}
	return d
}
