package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodstore/internal/app"
	"foodstore/internal/config"
	"foodstore/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "foodstore"}).Fatal(context.Background(), "invalid configuration", err)
	}

	log := logger.New(logger.Options{
		ServiceName: "foodstore",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		log.Fatal(ctx, "failed to start", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(log.WithField(gctx, "port", cfg.AppPort), "starting server")
		return rt.App.Listen(cfg.AppPort)
	})

	g.Go(func() error {
		return rt.ConsumeEvents(gctx)
	})

	// Wait for a signal or a failed worker, then drain the server.
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")
		return rt.App.ShutdownWithTimeout(shutdownTimeout)
	})

	exitCode := 0
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(context.Background(), "server stopped with error", err)
		exitCode = 1
	}
	if err := rt.Close(); err != nil {
		log.Error(context.Background(), "failed to close connections", err)
		exitCode = 1
	}
	log.Info(context.Background(), "server gracefully stopped")
	os.Exit(exitCode)
}
