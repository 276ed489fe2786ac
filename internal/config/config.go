package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session store backends
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all configuration values
type Config struct {
	Addr          string        `yaml:"addr"`
	DBPath        string        `yaml:"db_path"`
	SessionStore  string        `yaml:"session_store"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`

	DBPathSource string // where DBPath was set from: "default", "yaml file", or "env var"
	DemoMode     bool   // seed data on a new database and serve /initdb (set via -demo flag)
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists), a .env file in the working directory (if it exists) and finally
// environment variables.
func Load(path string) (*Config, error) {
	// Defaults
	cfg := &Config{
		Addr:         ":3001",
		DBPath:       "./customers-tracker.db",
		DBPathSource: "default",
		SessionStore: SessionStoreSQLite,
		SessionTTL:   7 * 24 * time.Hour,
		CORSOrigins:  []string{"*"},
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Load from YAML if file exists
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		prevDBPath := cfg.DBPath
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
		if cfg.DBPath != prevDBPath {
			cfg.DBPathSource = "yaml file"
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
		cfg.DBPathSource = "env var"
	}
	if v := os.Getenv("SESSION_STORE"); v != "" {
		cfg.SessionStore = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("Warning: invalid COOKIE_SECURE %q, keeping %v", v, cfg.CookieSecure)
		} else {
			cfg.CookieSecure = secure
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreSQLite, SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required when session_store is 'redis'")
		}
	default:
		return fmt.Errorf("unknown session_store %q (want sqlite, memory or redis)", c.SessionStore)
	}
	return nil
}
