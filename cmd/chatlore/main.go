// Package main contains the entrypoint for the ChatLore API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/chatlore/internal/config"
	"github.com/edgard/chatlore/internal/gemini"
	"github.com/edgard/chatlore/internal/logger"
	"github.com/edgard/chatlore/internal/search"
	"github.com/edgard/chatlore/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, serves HTTP until the
// context is cancelled, and returns an exit code.
func run(ctx context.Context) int {
	flag.Parse()

	// Optionally seed the environment from a local .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	var oracle gemini.Generator
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Gemini.Temperature,
			MaxAttempts: cfg.Gemini.MaxAttempts,
			BaseDelay:   cfg.Gemini.RetryDelay,
		}, log)
		if err != nil {
			log.Error("failed to initialize Gemini client", "error", err)
			return 1
		}
		oracle = client
		log.Info("insight oracle enabled", "model", cfg.Gemini.Model)
	} else {
		log.Info("no Gemini API key configured, AI features degrade to fallbacks")
	}

	handler := server.NewHandler(log, oracle, search.Options{
		ClusterEps:       cfg.Search.ClusterEps,
		ClusterMinPoints: cfg.Search.ClusterMinPoints,
		ClusterMetric:    search.Metric(cfg.Search.ClusterMetric),
	})
	router := server.NewRouter(handler, server.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped due to error", "error", err)
		return 1
	}

	log.Info("server stopped gracefully")
	return 0
}
