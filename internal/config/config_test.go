package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{Port: 8080, Mode: "debug"},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Kafka:  KafkaConfig{Enabled: false},
		MinIO:  MinIOConfig{Endpoint: "localhost:9000"},
		Store: StoreConfig{
			Backend:    "file",
			FileRoot:   "./chunks",
			MaxSpheres: 4,
		},
		Lookup: LookupConfig{
			DefaultNucleus:    "13C",
			EstimateTolerance: 2.0,
			EstimateMinMatch:  1,
			EstimateCap:       50,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	cfg := newValidConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidMode(t *testing.T) {
	cfg := newValidConfig()
	cfg.Server.Mode = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MissingRedisAddr(t *testing.T) {
	cfg := newValidConfig()
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidStoreBackend(t *testing.T) {
	cfg := newValidConfig()
	cfg.Store.Backend = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MinIORequiredForMinIOBackend(t *testing.T) {
	cfg := newValidConfig()
	cfg.Store.Backend = "minio"
	cfg.MinIO.Endpoint = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_FileRootRequiredForFileBackend(t *testing.T) {
	cfg := newValidConfig()
	cfg.Store.FileRoot = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_KafkaBrokersRequiredWhenEnabled(t *testing.T) {
	cfg := newValidConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_KafkaDisabledSkipsBrokerCheck(t *testing.T) {
	cfg := newValidConfig()
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_InvalidEstimateTolerance(t *testing.T) {
	cfg := newValidConfig()
	cfg.Lookup.EstimateTolerance = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Log.Level = "invalid"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())
}
