// Package config defines all configuration structures for the nmrhose
// platform. No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables for cmd/nmrhosed.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds the L2 chunk-cache connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the shift-store chunk backend connection parameters.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// KafkaConfig holds the telemetry-event producer parameters. The system has
// no consumer workloads, so only producer settings are carried here.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	TimeoutMS       int      `mapstructure:"timeout_ms"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
}

// StoreConfig holds shift-store tunables: backend selection, sphere depth,
// and the L1 in-process cache bound.
type StoreConfig struct {
	Backend        string `mapstructure:"backend"` // "minio" | "file"
	FileRoot       string `mapstructure:"file_root"`
	MaxSpheres     int    `mapstructure:"max_spheres"`
	L1CacheChunks  int    `mapstructure:"l1_cache_chunks"` // 0 is replaced by DefaultL1CacheChunks
	TruncateRounds int    `mapstructure:"truncate_rounds"`
}

// LookupConfig holds forward-lookup and reverse-estimator defaults.
type LookupConfig struct {
	DefaultNucleus    string  `mapstructure:"default_nucleus"`
	EstimateTolerance float64 `mapstructure:"estimate_tolerance"`
	EstimateMinMatch  int     `mapstructure:"estimate_min_match"`
	EstimateCap       int     `mapstructure:"estimate_cap"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	SamplingRate     int    `mapstructure:"sampling_rate"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform. Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	MinIO  MinIOConfig  `mapstructure:"minio"`
	Store  StoreConfig  `mapstructure:"store"`
	Lookup LookupConfig `mapstructure:"lookup"`
	Log    LogConfig    `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config. It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Store
	switch c.Store.Backend {
	case "minio", "file":
	default:
		return fmt.Errorf("config: store.backend %q is invalid; expected minio|file", c.Store.Backend)
	}
	if c.Store.Backend == "minio" && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required when store.backend=minio")
	}
	if c.Store.Backend == "file" && c.Store.FileRoot == "" {
		return fmt.Errorf("config: store.file_root is required when store.backend=file")
	}
	if c.Store.MaxSpheres < 1 {
		return fmt.Errorf("config: store.max_spheres must be ≥ 1, got %d", c.Store.MaxSpheres)
	}
	if c.Store.L1CacheChunks < 0 {
		return fmt.Errorf("config: store.l1_cache_chunks must be ≥ 0, got %d", c.Store.L1CacheChunks)
	}

	// Kafka — only validated when telemetry events are enabled.
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address when kafka.enabled=true")
	}

	// Lookup
	if c.Lookup.EstimateTolerance <= 0 {
		return fmt.Errorf("config: lookup.estimate_tolerance must be > 0, got %f", c.Lookup.EstimateTolerance)
	}
	if c.Lookup.EstimateMinMatch < 1 {
		return fmt.Errorf("config: lookup.estimate_min_match must be ≥ 1, got %d", c.Lookup.EstimateMinMatch)
	}
	if c.Lookup.EstimateCap < 1 {
		return fmt.Errorf("config: lookup.estimate_cap must be ≥ 1, got %d", c.Lookup.EstimateCap)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
