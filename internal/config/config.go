package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration, optional
	Redis RedisConfig `yaml:"redis"`

	// Identity verification
	Auth AuthConfig `yaml:"auth"`

	// Content limits and defaults
	Content ContentConfig `yaml:"content"`

	// Ranking processor configuration
	Rankings RankingsConfig `yaml:"rankings"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	MigrationsPath  string        `yaml:"migrations_path"`
	// FunctionPrefix is stripped from request paths in the request-scoped shape
	FunctionPrefix  string        `yaml:"function_prefix"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver       string        `yaml:"driver"` // "postgres" or "sqlite"
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"sslmode"`
	SQLitePath   string        `yaml:"sqlite_path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

// RedisConfig holds the ranking cache connection. An empty URL selects the in-process cache.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds identity verification settings
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	SessionCookie string `yaml:"session_cookie"`
	AutoProvision bool   `yaml:"auto_provision"`
}

// ContentConfig holds listing and derivation settings
type ContentConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	SearchScanLimit int `yaml:"search_scan_limit"`
	WordsPerMinute  int `yaml:"words_per_minute"`
}

// RankingsConfig holds ranking processor settings
type RankingsConfig struct {
	Interval time.Duration `yaml:"interval"`
	Size     int           `yaml:"size"`
	TTL      time.Duration `yaml:"ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
			MigrationsPath:  "./migrations",
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Password:     "postgres",
			Name:         "hindi_news",
			SSLMode:      "disable",
			SQLitePath:   "./data/news.db",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,
		},
		Auth: AuthConfig{
			SessionCookie: "sid",
		},
		Content: ContentConfig{
			DefaultPageSize: 100,
			MaxPageSize:     100,
			SearchScanLimit: 1000,
			WordsPerMinute:  200,
		},
		Rankings: RankingsConfig{
			Interval: 5 * time.Minute,
			Size:     20,
			TTL:      15 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from .env, an optional YAML file and environment variables,
// in that order of increasing precedence. An empty path falls back to NEWS_CONFIG.
func Load(path string) (*Config, error) {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("NEWS_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.CORSOrigins = getListEnv("CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Server.MigrationsPath)
	c.Server.FunctionPrefix = getEnv("FUNCTION_PATH_PREFIX", c.Server.FunctionPrefix)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.SQLitePath = getEnv("DB_SQLITE_PATH", c.Database.SQLitePath)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MaxLifetime = getDurationEnv("DB_MAX_LIFETIME", c.Database.MaxLifetime)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)

	c.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.SessionCookie = getEnv("AUTH_SESSION_COOKIE", c.Auth.SessionCookie)
	c.Auth.AutoProvision = getBoolEnv("AUTH_AUTO_PROVISION", c.Auth.AutoProvision)

	c.Content.DefaultPageSize = getIntEnv("CONTENT_DEFAULT_PAGE_SIZE", c.Content.DefaultPageSize)
	c.Content.MaxPageSize = getIntEnv("CONTENT_MAX_PAGE_SIZE", c.Content.MaxPageSize)
	c.Content.SearchScanLimit = getIntEnv("CONTENT_SEARCH_SCAN_LIMIT", c.Content.SearchScanLimit)
	c.Content.WordsPerMinute = getIntEnv("CONTENT_WORDS_PER_MINUTE", c.Content.WordsPerMinute)

	c.Rankings.Interval = getDurationEnv("RANKINGS_INTERVAL", c.Rankings.Interval)
	c.Rankings.Size = getIntEnv("RANKINGS_SIZE", c.Rankings.Size)
	c.Rankings.TTL = getDurationEnv("RANKINGS_TTL", c.Rankings.TTL)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Content.DefaultPageSize <= 0 || c.Content.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.Content.DefaultPageSize > c.Content.MaxPageSize {
		return fmt.Errorf("CONTENT_DEFAULT_PAGE_SIZE cannot exceed CONTENT_MAX_PAGE_SIZE")
	}
	if c.Rankings.Size <= 0 {
		return fmt.Errorf("RANKINGS_SIZE must be positive")
	}
	if c.Auth.SessionCookie == "" {
		return fmt.Errorf("AUTH_SESSION_COOKIE is required")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
