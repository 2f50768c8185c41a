package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Fetcher  FetcherConfig
	Browser  BrowserConfig
	Jobs     JobsConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type CacheConfig struct {
	Enabled     bool
	IgnoreCache bool
	Expire      time.Duration
}

type FetcherConfig struct {
	Type      string
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	Locale         string
}

type JobsConfig struct {
	PollInterval      time.Duration
	RelayPollInterval time.Duration
	RelayBatchSize    int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "gatherer"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", false),
			IgnoreCache: getEnvBool("CACHE_IGNORE", false),
			Expire:      getEnvDuration("CACHE_EXPIRE", 0),
		},
		Fetcher: FetcherConfig{
			Type:      getEnv("FETCHER_TYPE", FetcherHTTP),
			BaseURL:   getEnv("GATHERER_BASE_URL", "http://gatherer.wizards.com/Pages"),
			Timeout:   getEnvDuration("FETCHER_TIMEOUT", 30*time.Second),
			UserAgent: getEnv("FETCHER_USER_AGENT", ""),
		},
		Browser: BrowserConfig{
			Headless:       getEnvBool("BROWSER_HEADLESS", true),
			Timeout:        getEnvDuration("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getEnvInt("BROWSER_VIEWPORT_WIDTH", 1280),
			ViewportHeight: getEnvInt("BROWSER_VIEWPORT_HEIGHT", 1024),
			Locale:         getEnv("BROWSER_LOCALE", "en-US"),
		},
		Jobs: JobsConfig{
			PollInterval:      getEnvDuration("JOBS_POLL_INTERVAL", 10*time.Second),
			RelayPollInterval: getEnvDuration("RELAY_POLL_INTERVAL", 5*time.Second),
			RelayBatchSize:    getEnvInt("RELAY_BATCH_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Redis.Port)
	}

	if c.Cache.Expire < 0 {
		return fmt.Errorf("CACHE_EXPIRE cannot be negative")
	}

	if c.Fetcher.Type != FetcherHTTP && c.Fetcher.Type != FetcherBrowser {
		return fmt.Errorf("unknown fetcher type %q, want %q or %q", c.Fetcher.Type, FetcherHTTP, FetcherBrowser)
	}

	if c.Fetcher.BaseURL == "" {
		return fmt.Errorf("GATHERER_BASE_URL is required")
	}

	if c.Jobs.PollInterval <= 0 {
		return fmt.Errorf("JOBS_POLL_INTERVAL must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
