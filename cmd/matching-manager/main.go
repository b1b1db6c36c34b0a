// cmd/matching-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"expert-matching/internal/api"
	"expert-matching/internal/common/aws"
	"expert-matching/internal/common/camunda"
	"expert-matching/internal/common/config"
	"expert-matching/internal/common/database"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/common/observability"
	"expert-matching/internal/common/validation"
	"expert-matching/internal/events"
	"expert-matching/internal/matching"
	"expert-matching/internal/scoringconfig"
	"expert-matching/internal/store"
	"expert-matching/pkg/registry"

	rcm "expert-matching/internal/workers/matching/run-candidate-matching"
	ssc "expert-matching/internal/workers/matching/simulate-scoring-config"
)

const serviceName = "expert-matching"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": serviceName})

	zapLog.Info("Starting matching manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(serviceName)
	if err != nil {
		zapLog.Warn("observability meters unavailable, continuing without them", zap.Error(err))
		obs = observability.NewNoop()
	}
	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(serviceName, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		} else {
			obs.AttachTracing(tracing, serviceName)
		}
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (optional pre-filter) ---
	var (
		esClient *database.ElasticsearchClient
		search   store.CandidateIDSearcher
	)
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		search = store.NewCandidateSearch(esClient.Client, cfg.Database.Elasticsearch.CandidateIndex,
			cfg.Database.Elasticsearch.PageSize, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Events ---
	var topic events.TopicPublisher
	if cfg.Events.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Events.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		topic = snsClient
	}
	publisher := events.NewPublisher(events.Config{
		MessageName: cfg.Events.ZeebeMessageName,
		MessageTTL:  config.GetDuration(cfg.Events.MessageTTL),
		TopicARN:    cfg.Events.SNS.TopicARN,
	}, zeebe, topic, log)

	// --- Matching ---
	configs := scoringconfig.NewPostgresProvider(pg.DB, redis,
		time.Duration(cfg.Matching.ConfigCacheTTL)*time.Second, log)

	engine := matching.NewEngine(matching.Options{
		Workers:          cfg.Matching.WorkerCount,
		ChunkSize:        cfg.Matching.ChunkSize,
		RunBudget:        config.GetDuration(cfg.Matching.RunBudget),
		SlowRunThreshold: config.GetDuration(cfg.Matching.SlowRunThreshold),
	}, configs, log, obs)

	candidates := store.NewCandidateRepository(
		store.NewCandidateStore(pg.DB, cfg.Matching.CandidateBatchSize, log), search, log)

	service := matching.NewService(engine, store.NewOpportunityStore(pg.DB, log), candidates,
		publisher, cfg.Matching.DefaultAlgorithmVersion, log)

	// --- Workers ---
	reg, err := registry.LoadRegistry(cfg.Matching.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewSchemaValidator(reg)
	if err != nil {
		zapLog.Fatal("activity registry schemas invalid", zap.Error(err))
	}

	var workers []*camunda.CamundaWorker

	if wcfg := config.GetWorkerConfig(cfg, rcm.TaskType); wcfg.Enabled {
		handler, err := rcm.NewHandler(rcm.ConfigFromApp(cfg), service, validator, log)
		if err != nil {
			zapLog.Fatal("failed to create run-candidate-matching handler", zap.Error(err))
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), rcm.TaskType, wcfg, handler, log))
	}

	if wcfg := config.GetWorkerConfig(cfg, ssc.TaskType); wcfg.Enabled {
		handler, err := ssc.NewHandler(ssc.ConfigFromApp(cfg), service, validator, log)
		if err != nil {
			zapLog.Fatal("failed to create simulate-scoring-config handler", zap.Error(err))
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), ssc.TaskType, wcfg, handler, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- HTTP API, health and metrics ---
	checks := []api.ReadinessCheck{
		{Name: "postgres", Probe: pg.Ping},
		{Name: "redis", Probe: redis.Ping},
		{Name: "zeebe", Probe: zeebe.HealthCheck},
	}
	if esClient != nil {
		index := cfg.Database.Elasticsearch.CandidateIndex
		checks = append(checks, api.ReadinessCheck{Name: "elasticsearch", Probe: func(ctx context.Context) error {
			return esClient.CheckIndex(ctx, index)
		}})
	}

	server := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.SetupRouter(api.Dependencies{
			Service: service,
			Configs: configs,
			Checks:  checks,
			Logger:  log,
			Mode:    cfg.HTTP.Mode,
		}),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}

	zapLog.Info("Matching manager stopped gracefully")
}
