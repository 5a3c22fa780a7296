package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"lynx/internal/cache"
	"lynx/internal/cli"
	apphttp "lynx/internal/http"
	"lynx/internal/log"
	"lynx/internal/metrics"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, logger := cli.MustLoadConfig()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	b, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer b.Close()

	metrics.Init(b.Repo.DB())

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Records:            b.Records,
		Reports:            b.Reports,
		Exports:            b.Exports,
		Store:              b.Repo,
	}, logger)

	janitor := cache.NewJanitor(logger)
	janitor.Register(b.Cache)
	janitor.Register(srv.Limiter())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting lynx server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"exports", b.Reports.ExportsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return janitor.Run(gctx, janitorInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
