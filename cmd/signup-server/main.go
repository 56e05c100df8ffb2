// cmd/signup-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"activity-signup/internal/common/config"
	httpclient "activity-signup/internal/common/http"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/common/observability"
	"activity-signup/internal/listeners"
	"activity-signup/internal/registry"
	"activity-signup/internal/server"
)

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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, zapLog, log); err != nil {
		zapLog.Fatal("signup server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLog *zap.Logger, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLog.Info("Starting signup server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(observability.Options{
		ServiceName:     cfg.Observability.ServiceName,
		TracingExporter: cfg.Observability.Tracing.Exporter,
	}, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}()

	catalogEntries, err := loadCatalog(cfg.Registry)
	if err != nil {
		return err
	}
	reg := registry.New(registry.Config{EnforceCapacity: cfg.Registry.EnforceCapacity})
	reg.Seed(catalogEntries)
	zapLog.Info("Registry seeded", zap.Int("activities", len(catalogEntries)))

	outbound := httpclient.NewClient(outboundTimeout, cfg.App.Name+"/"+cfg.App.Version)

	deps, err := connectBackends(ctx, cfg, outbound, zapLog)
	if err != nil {
		return err
	}
	defer deps.Close()

	dispatcher := listeners.NewDispatcher(listeners.DefaultBreakerSettings, log)
	wired, err := registerListeners(ctx, cfg, deps, outbound, dispatcher, log)
	if err != nil {
		return err
	}
	if wired.mirror != nil {
		if err := wired.mirror.Sync(ctx, reg.List()); err != nil {
			zapLog.Warn("roster mirror sync failed", zap.Error(err))
		}
	}
	zapLog.Info("Listeners registered", zap.Strings("listeners", dispatcher.Names()))

	svc := registry.NewService(reg, dispatcher, nil, obs, log)
	svc.RefreshGauges()

	opts := []server.Option{
		server.WithMetrics(metrics.NewHTTPMetrics(prometheus.DefaultRegisterer), nil),
	}
	if wired.audit != nil {
		opts = append(opts, server.WithHistory(wired.audit))
	}
	srv := server.NewServer(cfg.Server, svc, deps.HealthChecks(), log, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLog.Info("Shutting down signup server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	zapLog.Info("Signup server stopped")
	return nil
}
