package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config/estate-admin.yaml"

// Store drivers
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// SQL drivers registered for the postgres store
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Driver    string `yaml:"driver"`
	Namespace string `yaml:"namespace"`
	Dir       string `yaml:"dir"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type SessionConfig struct {
	ExpirySkew     time.Duration `yaml:"expiry_skew"`
	CheckInterval  time.Duration `yaml:"check_interval"`
	AdminLoginPath string        `yaml:"admin_login_path"`
	LoginPath      string        `yaml:"login_path"`
}

func defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:5000",
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Driver:    StoreFile,
			Namespace: "default",
			Dir:       defaultStoreDir(),
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Database: DatabaseConfig{
			Driver:  DriverPQ,
			Host:    "localhost",
			Port:    "5432",
			User:    "estate",
			DBName:  "estate_admin",
			SSLMode: "disable",
		},
		Session: SessionConfig{
			ExpirySkew:     60 * time.Second,
			CheckInterval:  60 * time.Second,
			AdminLoginPath: "/admin/login",
			LoginPath:      "/login",
		},
	}
}

// Load builds the configuration from defaults, the YAML file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaults()

	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		path = DefaultConfigPath
	}
	// A missing default file is fine; a missing requested one is not.
	if err := cfg.loadFile(path); err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	log.Printf("[CONFIG] Loaded %s", path)
	return nil
}

func (c *Config) applyEnv() {
	c.Backend.URL = getEnv("BACKEND_URL", c.Backend.URL)
	c.Backend.Timeout = getDurationEnv("HTTP_TIMEOUT", c.Backend.Timeout)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.Namespace = getEnv("STORE_NAMESPACE", c.Store.Namespace)
	c.Store.Dir = getEnv("STORE_DIR", c.Store.Dir)

	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.Session.ExpirySkew = getDurationEnv("SESSION_EXPIRY_SKEW", c.Session.ExpirySkew)
	c.Session.CheckInterval = getDurationEnv("SESSION_CHECK_INTERVAL", c.Session.CheckInterval)
	c.Session.AdminLoginPath = getEnv("ADMIN_LOGIN_PATH", c.Session.AdminLoginPath)
	c.Session.LoginPath = getEnv("LOGIN_PATH", c.Session.LoginPath)
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreFile, StoreRedis, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Database.Driver {
	case DriverPQ, DriverPGX:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Backend.URL == "" {
		return errors.New("backend url is required")
	}
	if c.Session.CheckInterval <= 0 {
		return fmt.Errorf("session check interval must be positive, got %s", c.Session.CheckInterval)
	}
	// Zero would silently fall back to the session manager's default.
	if c.Session.ExpirySkew <= 0 {
		return fmt.Errorf("session expiry skew must be positive, got %s", c.Session.ExpirySkew)
	}
	return nil
}

// DSN returns a lib/pq style connection string; pgx's stdlib driver accepts it too.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func defaultStoreDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "estate-admin"
	}
	return ".estate-admin"
}

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
		log.Printf("[CONFIG] Ignoring %s=%q: not an integer", key, value)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("[CONFIG] Ignoring %s=%q: not a duration", key, value)
	}
	return defaultValue
}
