package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	AppPort               string
	AppEnv                string
	AppCorsAllowedOrigins []string

	UpstreamAPIURL    string
	UpstreamSocketURL string
	UpstreamTimeout   time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Receiver hints are session-scoped; the Redis-backed store expires them
	// after this duration.
	HintTTL time.Duration

	RateLimitRPS      float64
	RateLimitBurst    int
	TrustedProxyCIDRs []string
}

func LoadAppConfig() *AppConfig {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, reading from system environment variables")
	}

	return &AppConfig{
		AppPort:               getEnv("APP_PORT", "3000"),
		AppEnv:                getEnv("APP_ENV", "development"),
		AppCorsAllowedOrigins: strings.Split(getEnv("APP_CORS_ALLOWED_ORIGINS", "*"), ","),

		UpstreamAPIURL:    mustGetEnv("UPSTREAM_API_URL"),
		UpstreamSocketURL: mustGetEnv("UPSTREAM_SOCKET_URL"),
		UpstreamTimeout:   time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		HintTTL: time.Duration(getEnvAsInt("HINT_TTL_SECONDS", 86400)) * time.Second,

		RateLimitRPS:      getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 40),
		TrustedProxyCIDRs: splitNonEmpty(getEnv("TRUSTED_PROXY_CIDRS", "")),
	}
}

// RedisEnabled reports whether a Redis-backed hint store was configured.
// Without it the gateway falls back to an in-memory store.
func (c *AppConfig) RedisEnabled() bool {
	return c.RedisHost != ""
}

func splitNonEmpty(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mustGetEnv(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		slog.Error("Environment variable is required but not set", "key", key)
		os.Exit(1)
	}
	return value
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		slog.Warn("Environment variable must be an integer, using fallback", "key", key, "value", valStr, "fallback", fallback)
		return fallback
	}
	return val
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		slog.Warn("Environment variable must be a float, using fallback", "key", key, "value", valStr, "fallback", fallback)
		return fallback
	}
	return val
}
