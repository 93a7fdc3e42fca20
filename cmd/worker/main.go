// Command worker consumes queued generation jobs from Kafka and runs the pipeline.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/app"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generation"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/metrics"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	if !cfg.Kafka.Enabled() {
		logger.Fatalf("worker needs KAFKA_BROKERS")
	}
	if cfg.Storage.Backend == "memory" {
		logger.Fatalf("worker cannot share STORAGE_BACKEND=memory with the API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		logger.Fatalf("failed to initialize services: %v", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warnf("close connections: %v", err)
		}
	}()
	if a.Redis == nil {
		logger.Warn("Redis unavailable: retry attempts are not tracked, failed jobs are not retried")
	}

	// the worker never dispatches; jobs arrive through the consumer
	jobSvc := generation.NewJobService(a.JobStore, a.Orchestrator, generation.DispatcherFunc(func(context.Context, string) error {
		return fmt.Errorf("worker does not dispatch jobs")
	}))
	consumer := generation.NewKafkaConsumer(cfg.Kafka, jobSvc, a.Redis, cfg.Jobs.MaxAttempts)
	defer consumer.Close()

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warnf("metrics server: %v", err)
		}
	}()

	logger.Infof("worker consuming %s as group %s", cfg.Kafka.Topic, cfg.Kafka.GroupID)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("consumer stopped: %v", err)
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)
	logger.Info("worker stopped")
}
