package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the API server configuration.
type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	CORS     CORSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration. An empty secret disables token checks.
type JWTConfig struct {
	Secret       string
	AuthRequired bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// StorageConfig locates uploaded photos on disk and on the web
type StorageConfig struct {
	BasePath string
	BaseURL  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AgentConfig is the field agent configuration.
type AgentConfig struct {
	DBPath        string
	RemoteBaseURL string
	AuthToken     string
	RemoteTimeout time.Duration
	SyncInterval  time.Duration
	ProbeInterval time.Duration
	// SyncMaxAttempts of 0 retries queued writes forever
	SyncMaxAttempts int
	LogFile         string
	LogLevel        string
}

// loadDotEnv reads .env when present. A missing file is not an error.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}
}

func Load() (*Config, error) {
	loadDotEnv()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "sitecrew"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	authRequired, err := strconv.ParseBool(getEnv("AUTH_REQUIRED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_REQUIRED: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:       getEnv("JWT_SECRET_KEY", ""),
		AuthRequired: authRequired,
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%d/uploads", appPort)),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.AuthRequired && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required when AUTH_REQUIRED is true")
	}
	if c.Storage.BasePath == "" {
		return fmt.Errorf("STORAGE_BASE_PATH is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func LoadAgent() (*AgentConfig, error) {
	loadDotEnv()

	config := &AgentConfig{
		DBPath:        getEnv("AGENT_DB_PATH", "./data/sitecrew.db"),
		RemoteBaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:8080"),
		AuthToken:     getEnv("AUTH_TOKEN", ""),
		LogFile:       getEnv("LOG_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if config.RemoteTimeout, err = getEnvDuration("REMOTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.SyncInterval, err = getEnvDuration("SYNC_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if config.ProbeInterval, err = getEnvDuration("PROBE_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}

	config.SyncMaxAttempts, err = strconv.Atoi(getEnv("SYNC_MAX_ATTEMPTS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_MAX_ATTEMPTS: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (c *AgentConfig) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("AGENT_DB_PATH is required")
	}
	if !strings.HasPrefix(c.RemoteBaseURL, "http://") && !strings.HasPrefix(c.RemoteBaseURL, "https://") {
		return fmt.Errorf("REMOTE_BASE_URL must be an http(s) URL")
	}
	if c.RemoteTimeout <= 0 || c.SyncInterval <= 0 || c.ProbeInterval <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT, SYNC_INTERVAL and PROBE_INTERVAL must be positive")
	}
	if c.SyncMaxAttempts < 0 {
		return fmt.Errorf("SYNC_MAX_ATTEMPTS must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
