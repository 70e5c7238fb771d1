package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type StoreBackend string

const (
	BackendFile  StoreBackend = "file"
	BackendRedis StoreBackend = "redis"
)

type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	StateDir       string
	StoreBackend   StoreBackend
	RedisAddr      string
	RedisPassword  string
	LogLevel       string
}

func Load() *Config {
	return &Config{
		APIBaseURL:     getEnv("PORTFOLIO_API_URL", "http://localhost:8000/api"),
		RequestTimeout: time.Duration(getEnvInt("CHAT_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		StateDir:       getEnv("CHAT_STATE_DIR", defaultStateDir()),
		StoreBackend:   StoreBackend(getEnv("CHAT_STORE_BACKEND", string(BackendFile))),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".portfolio-chat"
	}
	return filepath.Join(base, "portfolio-chat")
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		value = defaultValue
	}

	return value
}
