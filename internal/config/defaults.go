// Package config provides configuration loading, defaults, and validation for
// the nmrhose platform.
package config

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "nmrhose.events"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "nmr-chunks"

	DefaultStoreBackend    = "file"
	DefaultStoreFileRoot   = "./chunks"
	DefaultMaxSpheres      = 4
	DefaultTruncateRounds  = 8
	DefaultL1CacheChunks   = 64

	DefaultNucleus           = "13C"
	DefaultEstimateTolerance = 2.0
	DefaultEstimateMinMatch  = 1
	DefaultEstimateCap       = 50

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "nmrhose:chunk:"
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0". We leave it as-is (0 is also the default).

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Store ─────────────────────────────────────────────────────────────────
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.FileRoot == "" {
		cfg.Store.FileRoot = DefaultStoreFileRoot
	}
	if cfg.Store.MaxSpheres == 0 {
		cfg.Store.MaxSpheres = DefaultMaxSpheres
	}
	if cfg.Store.TruncateRounds == 0 {
		cfg.Store.TruncateRounds = DefaultTruncateRounds
	}
	if cfg.Store.L1CacheChunks == 0 {
		cfg.Store.L1CacheChunks = DefaultL1CacheChunks
	}

	// ── Lookup ────────────────────────────────────────────────────────────────
	if cfg.Lookup.DefaultNucleus == "" {
		cfg.Lookup.DefaultNucleus = DefaultNucleus
	}
	if cfg.Lookup.EstimateTolerance == 0 {
		cfg.Lookup.EstimateTolerance = DefaultEstimateTolerance
	}
	if cfg.Lookup.EstimateMinMatch == 0 {
		cfg.Lookup.EstimateMinMatch = DefaultEstimateMinMatch
	}
	if cfg.Lookup.EstimateCap == 0 {
		cfg.Lookup.EstimateCap = DefaultEstimateCap
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
