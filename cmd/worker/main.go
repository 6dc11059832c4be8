package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	environment "msgworker/internal/env"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("Starting msgworker")

	if env.Servers.HTTP.Observability != nil {
		go func() {
			logger.Info("Starting observability server", slog.String("addr", env.Servers.HTTP.Observability.Addr))
			if err := env.Servers.HTTP.Observability.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Observability server error", slog.Any("error", err))
			}
		}()
	}

	if err := env.Services.WorkerManager.Start(ctx); err != nil {
		logger.Error("Failed to start workers", slog.Any("error", err))
		shutdown(env)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Worker started. Press Ctrl+C to stop.")

	select {
	case sig := <-quit:
		logger.Info("Received signal", slog.String("signal", sig.String()))
	case <-env.Services.Consumer.Done():
		// a stop listener ended the consumer, e.g. the failure limit was reached
		logger.Info("Consumer finished on its own")
	}

	cancel()
	shutdown(env)

	if fl := env.Services.FailureLimit; fl != nil && fl.LimitReached() {
		// let the supervisor restart us
		os.Exit(1)
	}
}

func shutdown(env *environment.Env) {
	logger := env.Logger
	logger.Info("Shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer cancel()

	if err := env.Services.WorkerManager.Stop(shutdownCtx); err != nil {
		logger.Error("Worker shutdown error", slog.Any("error", err))
	}

	if env.Servers.HTTP.Observability != nil {
		if err := env.Servers.HTTP.Observability.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Error("Observability server shutdown error", slog.Any("error", err))
		}
	}

	for _, closer := range env.Closers {
		closer()
	}

	logger.Info("Application stopped")
}
