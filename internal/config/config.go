package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL           string
	RedisURL              string
	JWTSecret             string
	ServerPort            string
	BackendURL            string
	BackendTimeoutSeconds int
	QuotaTimezone         string
	AnonDailyLimit        int
	AnonStoreCapacity     int
}

func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:             getEnv("JWT_SECRET", "secret"),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		BackendURL:            getEnv("BACKEND_URL", "http://localhost:9000"),
		BackendTimeoutSeconds: getEnvInt("BACKEND_TIMEOUT_SECONDS", 60),
		QuotaTimezone:         getEnv("QUOTA_TIMEZONE", "UTC"),
		AnonDailyLimit:        getEnvInt("ANON_DAILY_LIMIT", 3),
		AnonStoreCapacity:     getEnvInt("ANON_STORE_CAPACITY", 100000),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
