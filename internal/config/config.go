package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Game      GameConfig
	Storage   StorageConfig
	Frontend  FrontendConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type GameConfig struct {
	// CatalogPath is a YAML catalog on disk; empty means the embedded one.
	CatalogPath  string
	TickInterval time.Duration
}

type StorageConfig struct {
	SnapshotPath string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// Load reads the environment (and an optional .env file) into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}

	config := &Config{
		Server:    loadServerConfig(),
		Logging:   loadLoggingConfig(),
		Game:      loadGameConfig(),
		Storage:   loadStorageConfig(),
		Frontend:  loadFrontendConfig(),
		RateLimit: loadRateLimitConfig(),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func loadServerConfig() ServerConfig {
	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT_SECONDS", "15"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT_SECONDS", "15"))
	idleTimeout, _ := strconv.Atoi(getEnv("SERVER_IDLE_TIMEOUT_SECONDS", "60"))

	return ServerConfig{
		Host:         getEnv("SERVER_HOST", "127.0.0.1"),
		Port:         getEnv("SERVER_PORT", "8081"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := getEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		JSONFormat: environment == "production",
	}
}

func loadGameConfig() GameConfig {
	tickMillis, _ := strconv.Atoi(getEnv("TICK_INTERVAL_MS", "100"))

	return GameConfig{
		CatalogPath:  getEnv("CATALOG_PATH", ""),
		TickInterval: time.Duration(tickMillis) * time.Millisecond,
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		SnapshotPath: getEnv("SNAPSHOT_PATH", "data/empire.db"),
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: getEnv("CORS_DEBUG", "") == "true",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	enabled := getEnv("RATE_LIMIT_ENABLED", "true") == "true"
	requestsPerSecond, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "50"), 64)
	burstSize, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST_SIZE", "100"))

	return RateLimitConfig{
		Enabled:           enabled,
		RequestsPerSecond: requestsPerSecond,
		BurstSize:         burstSize,
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL_MS must be a positive number of milliseconds")
	}

	if c.Storage.SnapshotPath == "" {
		return fmt.Errorf("SNAPSHOT_PATH is required")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_BURST_SIZE must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
