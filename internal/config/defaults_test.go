package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_NilConfig(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.Equal(t, DefaultMinIOEndpoint, cfg.MinIO.Endpoint)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, DefaultStoreBackend, cfg.Store.Backend)
	assert.Equal(t, DefaultMaxSpheres, cfg.Store.MaxSpheres)
	assert.Equal(t, DefaultNucleus, cfg.Lookup.DefaultNucleus)
	assert.Equal(t, DefaultEstimateTolerance, cfg.Lookup.EstimateTolerance)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 9999, Mode: "release"},
		Redis:  RedisConfig{Addr: "redis.internal:6380"},
		Log:    LogConfig{Level: "debug", Format: "text"},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestApplyDefaults_RedisDBZeroIsNotOverridden(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Addr: "x", DB: 0}}
	ApplyDefaults(cfg)
	assert.Equal(t, 0, cfg.Redis.DB)
}
