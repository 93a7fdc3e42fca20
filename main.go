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

	"github.com/prometheus/client_golang/prometheus"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/app"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generation"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	for _, w := range config.Warnings {
		logger.Warn(w)
	}
	logger.Infof("config loaded: env=%s storage=%s keycloak=%v redis=%v kafka=%v",
		cfg.Server.Environment, cfg.Storage.Backend, cfg.Keycloak.URL != "", cfg.Redis.Host != "", cfg.Kafka.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		logger.Fatalf("failed to initialize services: %v", err)
	}
	a.SeedTemplates(ctx)

	verifier, method, err := app.NewVerifier(ctx, cfg)
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}
	logger.Infof("auth: using %s token verifier", method)

	var (
		dispatcher generation.Dispatcher
		local      *generation.LocalDispatcher
		kafkaOut   *generation.KafkaDispatcher
	)
	if cfg.Kafka.Enabled() {
		kafkaOut = generation.NewKafkaDispatcher(cfg.Kafka)
		dispatcher = kafkaOut
		logger.Infof("generation jobs: publishing to kafka topic %s", cfg.Kafka.Topic)
	} else {
		local = generation.NewLocalDispatcher(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
		dispatcher = local
		logger.Infof("generation jobs: %d in-process workers", cfg.Jobs.Workers)
	}
	jobSvc := generation.NewJobService(a.JobStore, a.Orchestrator, dispatcher)
	if local != nil {
		local.Start(jobSvc)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := newRouter(a, verifier, jobSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting resume service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if local != nil {
		if err := local.Stop(sctx); err != nil {
			logger.Warnf("job workers did not drain: %v", err)
		}
	}
	if kafkaOut != nil {
		if err := kafkaOut.Close(); err != nil {
			logger.Warnf("kafka writer close: %v", err)
		}
	}
	if err := a.Close(sctx); err != nil {
		logger.Warnf("close connections: %v", err)
	}
}
