// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all server configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Cache  CacheConfig
	Photo  PhotoConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"FV_HOST" default:"127.0.0.1"`
	Port            int           `envconfig:"FV_PORT" default:"8080"`
	Dev             bool          `envconfig:"FV_DEV" default:"false"`
	DefaultUser     string        `envconfig:"FV_DEFAULT_USER" default:"USER-DEMO"`
	CORSOrigins     []string      `envconfig:"FV_CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"FV_SHUTDOWN_TIMEOUT" default:"10s"`
}

// StoreConfig selects and configures the visit store.
type StoreConfig struct {
	// Visits is "sqlite" or "mongodb". Plans and customers always use SQLite.
	Visits        string `envconfig:"FV_VISIT_STORE" default:"sqlite"`
	DBPath        string `envconfig:"FV_DB_PATH"`
	MongoURI      string `envconfig:"FV_MONGO_URI"`
	MongoDatabase string `envconfig:"FV_MONGO_DATABASE" default:"field_visits"`
}

// CacheConfig configures the ad-hoc plan session cache.
type CacheConfig struct {
	Type          string        `envconfig:"FV_CACHE_TYPE" default:"memory"`
	SessionTTL    time.Duration `envconfig:"FV_SESSION_TTL" default:"24h"`
	RedisAddr     string        `envconfig:"FV_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"FV_REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"FV_REDIS_DB" default:"0"`
}

// PhotoConfig configures photo upload and URL resolution.
type PhotoConfig struct {
	CloudinaryCloud     string        `envconfig:"FV_CLOUDINARY_CLOUD"`
	CloudinaryPreset    string        `envconfig:"FV_CLOUDINARY_PRESET"`
	UploadTimeout       time.Duration `envconfig:"FV_UPLOAD_TIMEOUT" default:"15s"`
	GCSBucket           string        `envconfig:"FV_GCS_BUCKET"`
	SignedURLTTL        time.Duration `envconfig:"FV_GCS_URL_TTL" default:"15m"`
	PrefetchConcurrency int           `envconfig:"FV_PREFETCH_CONCURRENCY" default:"8"`
}

// Address returns the listen address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads a .env file when one exists, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Store.Visits) {
	case "sqlite":
	case "mongodb":
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("FV_MONGO_URI is required when FV_VISIT_STORE=mongodb"))
		}
	default:
		errs = append(errs, fmt.Errorf("FV_VISIT_STORE must be sqlite or mongodb, got %q", c.Store.Visits))
	}

	switch strings.ToLower(c.Cache.Type) {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("FV_REDIS_ADDR is required when FV_CACHE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("FV_CACHE_TYPE must be memory or redis, got %q", c.Cache.Type))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("FV_PORT out of range: %d", c.Server.Port))
	}
	if c.Cache.SessionTTL <= 0 {
		errs = append(errs, errors.New("FV_SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}
