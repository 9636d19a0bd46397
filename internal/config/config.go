package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	DBPath        string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QuoteEndpoint string
	QuoteTimeout  time.Duration
	QuoteMaxRPM   int
	QuoteBurst    int
}

func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "quotes.db"),
		CacheTTL:      getEnvDuration("CACHE_TTL", 60*time.Second),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		QuoteEndpoint: getEnv("QUOTES_ENDPOINT", ""),
		QuoteTimeout:  getEnvDuration("QUOTES_TIMEOUT", 10*time.Second),
		QuoteMaxRPM:   getEnvInt("QUOTES_MAX_RPM", 0),
		QuoteBurst:    getEnvInt("QUOTES_BURST", 1),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
