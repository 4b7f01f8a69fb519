// Command nmrhosed is the HTTP server entry point for the nmrhose platform.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nmrhose/nmrhose/internal/config"
	"github.com/nmrhose/nmrhose/internal/estimate"
	"github.com/nmrhose/nmrhose/internal/events"
	"github.com/nmrhose/nmrhose/internal/infrastructure/database/redis"
	"github.com/nmrhose/nmrhose/internal/infrastructure/messaging/kafka"
	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/logging"
	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/prometheus"
	"github.com/nmrhose/nmrhose/internal/infrastructure/storage/minio"
	httpserver "github.com/nmrhose/nmrhose/internal/interfaces/http"
	"github.com/nmrhose/nmrhose/internal/interfaces/http/handlers"
	"github.com/nmrhose/nmrhose/internal/interfaces/http/middleware"
	"github.com/nmrhose/nmrhose/internal/lookup"
	"github.com/nmrhose/nmrhose/internal/store"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting nmrhose server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("store_backend", cfg.Store.Backend),
	)

	metricsCollector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "nmrhose",
		Subsystem:            "server",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize metrics collector", logging.Err(err))
	}
	appMetrics := prometheus.NewAppMetrics(metricsCollector)

	redisClient, err := redis.NewClient(&redis.RedisConfig{
		Mode:         "standalone",
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize redis client", logging.Err(err))
	}
	l2Cache := redis.NewRedisCache(redisClient, logger, redis.WithPrefix(cfg.Redis.KeyPrefix), redis.WithDefaultTTL(cfg.Redis.DefaultTTL))

	var loader store.ChunkLoader
	if cfg.Store.Backend == "minio" {
		minioClient, mErr := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			ChunkBucket:     cfg.MinIO.Bucket,
			PresignExpiry:   cfg.MinIO.PresignExpiry,
		}, logger)
		if mErr != nil {
			logger.Fatal("failed to initialize minio client", logging.Err(mErr))
		}
		loader = store.NewMinIOLoader(minio.NewMinIORepository(minioClient, logger), cfg.MinIO.Bucket)
	} else {
		loader = store.NewFileLoader(cfg.Store.FileRoot)
	}

	publisher := events.Publisher(events.NopPublisher{})
	if cfg.Kafka.Enabled {
		producer, pErr := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:    cfg.Kafka.Brokers,
			MaxRetries: cfg.Kafka.ProducerRetries,
			BatchSize:  cfg.Kafka.BatchSize,
		}, logger)
		if pErr != nil {
			logger.Error("failed to initialize kafka producer, telemetry events disabled", logging.Err(pErr))
		} else {
			publisher = events.NewKafkaPublisher(producer, "nmrhosed", logger)
		}
	}

	shiftStore := store.New(loader, l2Cache, cfg.Store.Backend, cfg.Store.L1CacheChunks,
		store.WithPublisher(publisher), store.WithMetrics(appMetrics))

	lookuper := lookup.New(shiftStore,
		lookup.WithPublisher(publisher), lookup.WithMetrics(appMetrics), lookup.WithMaxSpheres(cfg.Store.MaxSpheres))
	estimator := estimate.New(shiftStore,
		estimate.WithPublisher(publisher), estimate.WithMetrics(appMetrics))

	healthHandler := handlers.NewHealthHandler(version, redisHealthChecker{client: redisClient})

	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:   healthHandler,
		PredictHandler:  handlers.NewPredictHandler(lookuper),
		EstimateHandler: handlers.NewEstimateHandler(estimator),
		CORSConfig:      middleware.DefaultCORSConfig(),
		LogConfig:       middleware.DefaultLoggingConfig(),
		Logger:          logger,
	})

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server exited with error", logging.Err(err))
	}

	logger.Info("server stopped")
}

// loadConfig attempts to load configuration from file, falling back to
// environment variables when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg, envErr := config.LoadFromEnv()
		if envErr != nil {
			return nil, fmt.Errorf("config file not found at %s: %w", path, envErr)
		}
		return cfg, nil
	}
	return config.Load(path)
}

// redisHealthChecker adapts the Redis client's Ping method to the
// handlers.HealthChecker interface.
type redisHealthChecker struct {
	client *redis.Client
}

func (r redisHealthChecker) Name() string { return "redis" }

func (r redisHealthChecker) Check(ctx context.Context) error {
	return r.client.Ping(ctx)
}
