package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string // "dev" or "prod"
	Port string

	LogLevel string

	// StoreBackend selects the room store: memory (default), sqlite, redis.
	StoreBackend string
	SQLiteDSN    string // empty means the in-memory DSN
	RedisAddr    string
	RedisDB      int
}

// Load reads configuration from the environment, after loading a local .env
// if one exists (dev convenience, ignored in prod deployments).
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:          getEnv("APP_ENV", "dev"),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		SQLiteDSN:    getEnv("SQLITE_DSN", ""),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
