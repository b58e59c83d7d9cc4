package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/signup/internal/api"
	"example.com/signup/internal/config"
	"example.com/signup/internal/domain"
	"example.com/signup/internal/observability"
	"example.com/signup/internal/outbox"
	httptransport "example.com/signup/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := domain.NewRegistry(domain.SeedCatalog(), domain.WithCapacityEnforcement(cfg.EnforceCapacity))
	opts := []domain.ServiceOption{
		domain.WithRecorder(observability.NewRegistryRecorder(registry.List())),
	}

	var dispatcher *outbox.Dispatcher
	if cfg.StreamEnabled() {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		dispatcher = outbox.NewDispatcher(producer, outbox.DispatcherConfig{
			Topic:         cfg.RosterTopic,
			FlushInterval: cfg.OutboxFlushInterval,
			BatchSize:     cfg.OutboxBatchSize,
			BufferSize:    cfg.OutboxBufferSize,
		}, logger)
		go dispatcher.Start(ctx)
		opts = append(opts, domain.WithPublisher(dispatcher))
		logger.Info("roster event stream enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.RosterTopic))
	} else {
		logger.Info("KAFKA_BROKERS not set, roster event stream disabled")
	}

	service := domain.NewService(registry, opts...)

	handler := api.NewHandler(service, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httptransport.NewServer(
		httptransport.DefaultServerConfig(cfg.HTTPAddress),
		httptransport.Chain(mux, httptransport.RequestLogger(logger), httptransport.CORS(cfg.CORSAllowedOrigin)),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("signup-service listening", zap.String("address", cfg.HTTPAddress), zap.Bool("enforce_capacity", cfg.EnforceCapacity))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	logger.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	// Stop the dispatcher only after in-flight requests have published their events.
	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}
}
