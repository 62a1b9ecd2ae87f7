// cmd/search-worker/main.go
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

	"sustainatrend-search/internal/common/camunda"
	"sustainatrend-search/internal/common/config"
	"sustainatrend-search/internal/common/database"
	"sustainatrend-search/internal/common/logger"
	"sustainatrend-search/internal/common/observability"
	"sustainatrend-search/internal/expansion"
	"sustainatrend-search/internal/search"
	realtimesearch "sustainatrend-search/internal/workers/search/realtime-search"
	"sustainatrend-search/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, log); err != nil {
		zapLog.Fatal("search worker stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	log.Info("starting search worker", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"backend":     cfg.Search.InternalBackend,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down observability", map[string]interface{}{"error": err.Error()})
		}
	}()

	var activity *registry.Activity
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		log.Warn("activity registry unavailable, using built-in schema", map[string]interface{}{
			"path":  cfg.Registry.Path,
			"error": err.Error(),
		})
	} else if a, ok := reg.FindByTaskType(realtimesearch.TaskType); ok {
		activity = a
	}

	b := &backends{}
	defer b.Close(log)

	internal, err := newInternalSource(ctx, cfg, b, log)
	if err != nil {
		return fmt.Errorf("internal source: %w", err)
	}
	external, err := newWebSearch(ctx, cfg, b, log)
	if err != nil {
		return fmt.Errorf("web search: %w", err)
	}

	orchestrator := search.NewOrchestrator(
		search.NewConfig(cfg.Search),
		expansion.New(cfg.APIs.Expansion, log),
		external,
		internal,
		log,
		search.WithTracer(obs.Tracer()),
	)

	zeebe, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := zeebe.Close(); err != nil {
			log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}()
	log.Info("zeebe client connected", map[string]interface{}{"address": cfg.Camunda.BrokerAddress})

	handler, err := realtimesearch.NewHandler(
		realtimesearch.LoadConfig(cfg, activity),
		orchestrator,
		log,
		realtimesearch.WithRecorder(obs),
	)
	if err != nil {
		return fmt.Errorf("create %s handler: %w", realtimesearch.TaskType, err)
	}

	var workers []*camunda.Worker
	if config.IsWorkerEnabled(cfg, realtimesearch.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, realtimesearch.TaskType)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), realtimesearch.TaskType, handler, camunda.WorkerOptions{
			Name:          cfg.App.Name,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, log))
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": realtimesearch.TaskType})
	}

	deps := append(b.pingers(), database.Pinger(zeebePinger{client: zeebe}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newProbeServer(log, deps...).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping workers", nil)
	case err := <-serverErr:
		log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
	}

	for _, w := range workers {
		w.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during server shutdown", map[string]interface{}{"error": err.Error()})
	}

	log.Info("search worker stopped gracefully", nil)
	return nil
}
