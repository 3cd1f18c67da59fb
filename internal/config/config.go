package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tictacgo/internal/logger"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL = "http://localhost:8080"
	DefaultBackend    = "file"
)

type Config struct {
	APIBaseURL string
	WSBaseURL  string

	// Client-state store
	StoreBackend  string // file, memory, redis, postgres
	StatePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	LogLevel string
	LogJSON  bool

	// StatusAddr enables the local status server (healthz, metrics, state)
	StatusAddr string

	// HTTPTimeout of zero disables the client timeout
	HTTPTimeout time.Duration
}

// Load reads the config from env (and .env when present).
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/"),
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", DefaultBackend)),
		StatePath:     getEnv("STATE_PATH", defaultStatePath()),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		StatusAddr:    os.Getenv("STATUS_ADDR"),
		HTTPTimeout:   time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 0)) * time.Second,
	}

	cfg.WSBaseURL = strings.TrimRight(getEnv("WS_BASE_URL", WSFromHTTP(cfg.APIBaseURL)), "/")

	switch cfg.StoreBackend {
	case "redis":
		if cfg.RedisAddr == "" {
			logger.Fatal("REDIS_ADDR is not set")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is not set")
		}
	}

	return cfg
}

// WSFromHTTP derives the websocket base from the HTTP base address.
func WSFromHTTP(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "tictacgo_state.json"
	}
	return filepath.Join(home, ".tictacgo", "state.json")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
