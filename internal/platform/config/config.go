// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults that are not plain durations or strings.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	// DefaultContentRetryMultiplier grows the wait between resubscribe attempts.
	DefaultContentRetryMultiplier = 2.0

	DefaultContentCircuitMaxFailures   = 5
	DefaultContentCircuitHalfOpenLimit = 3

	// DefaultLiveSendBuffer is how many messages may queue per live connection
	// before the slowest view is dropped.
	DefaultLiveSendBuffer = 16

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28
)

// Content store drivers.
const (
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Content   ContentConfig   `koanf:"content"   validate:"required"`
	Live      LiveConfig      `koanf:"live"      validate:"required"`
	CORS      CORSConfig      `koanf:"cors"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ContentConfig selects and tunes the hosted content store.
type ContentConfig struct {
	Driver         string               `koanf:"driver"          validate:"required,oneof=memory firestore mongo"`
	Firestore      FirestoreConfig      `koanf:"firestore"`
	Mongo          MongoConfig          `koanf:"mongo"`
	WriteTimeout   time.Duration        `koanf:"write_timeout"   validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
}

// FirestoreConfig contains Firebase project settings.
// An empty credentials file falls back to application default credentials.
type FirestoreConfig struct {
	ProjectID       string `koanf:"project_id"`
	CredentialsFile string `koanf:"credentials_file"`
}

// MongoConfig contains MongoDB connection settings. The deployment must be a
// replica set for change streams to work.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// RetryConfig contains resubscribe backoff settings.
type RetryConfig struct {
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
}

// CircuitBreakerConfig contains circuit breaker settings for content store reads.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// LiveConfig contains websocket settings for live page views.
type LiveConfig struct {
	PingInterval time.Duration `koanf:"ping_interval" validate:"required,min=1s"`
	WriteWait    time.Duration `koanf:"write_wait"    validate:"required,min=100ms"`
	SendBuffer   int           `koanf:"send_buffer"   validate:"required,min=1,max=1024"`
}

// CORSConfig contains cross-origin settings for the admin API.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "clinic-site",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.insecure":      true,
		"telemetry.service_name":  "clinic-site",
		"telemetry.sampling_rate": 1.0,

		"content.driver":                          DriverMemory,
		"content.firestore.project_id":            "",
		"content.firestore.credentials_file":      "",
		"content.mongo.uri":                       "mongodb://localhost:27017/?replicaSet=rs0",
		"content.mongo.database":                  "clinic",
		"content.mongo.connect_timeout":           "10s",
		"content.write_timeout":                   "10s",
		"content.retry.initial_interval":          "500ms",
		"content.retry.max_interval":              "30s",
		"content.retry.multiplier":                DefaultContentRetryMultiplier,
		"content.circuit_breaker.max_failures":    DefaultContentCircuitMaxFailures,
		"content.circuit_breaker.timeout":         "30s",
		"content.circuit_breaker.half_open_limit": DefaultContentCircuitHalfOpenLimit,

		"live.ping_interval": "30s",
		"live.write_wait":    "10s",
		"live.send_buffer":   DefaultLiveSendBuffer,

		"cors.allowed_origins": []string{},
	}
}

// configDir holds base.yaml and one YAML file per profile.
const configDir = "configs"

// Load layers the configuration, later sources overriding earlier ones:
// built-in defaults, configs/base.yaml, configs/<profile>.yaml, then APP_
// environment variables. Missing files are skipped.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	for _, path := range layerFiles(profile) {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	// Single underscores separate levels and double underscores stand for a
	// literal underscore: APP_CONTENT_MONGO_CONNECT__TIMEOUT sets
	// content.mongo.connect_timeout.
	if err := k.Load(env.Provider("APP_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := new(Config)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

func layerFiles(profile string) []string {
	files := []string{filepath.Join(configDir, "base.yaml")}
	if profile != "" {
		files = append(files, filepath.Join(configDir, profile+".yaml"))
	}

	return files
}

// envKey maps an APP_ environment variable name onto a koanf key path.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
	key = strings.ReplaceAll(key, "__", "\x00")
	key = strings.ReplaceAll(key, "_", ".")

	return strings.ReplaceAll(key, "\x00", "_")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
