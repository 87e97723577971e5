// Command deathrace compares two film-diary users.
//
// Usage:
//
//	deathrace -user1 alice -user2 bob           # one-shot: JSON report to stdout
//	deathrace -user1 alice                      # single-user snapshot
//	deathrace -serve :8085                      # HTTP API for the dashboard
//	deathrace -config deathrace.yaml -serve :8085
//
// Cache directory and TTL default from LB_CACHE_DIR and LB_CACHE_TTL
// (seconds) when not set in the config file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/unnonueve/deathrace/race"
	"github.com/unnonueve/deathrace/record"
)

func main() {
	configPath := flag.String("config", "", "path to deathrace.yaml config file")
	user1 := flag.String("user1", "", "first user to analyze")
	user2 := flag.String("user2", "", "second user (enables comparison)")
	feminine1 := flag.Bool("feminine1", false, "feminine taste-label variant for user1")
	feminine2 := flag.Bool("feminine2", false, "feminine taste-label variant for user2")
	serveAddr := flag.String("serve", "", "serve the HTTP API on this address instead of one-shot mode")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *user1, *user2, *feminine1, *feminine2, *serveAddr); err != nil {
		logger.Error("deathrace: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, user1, user2 string, feminine1, feminine2 bool, serveAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	svc, err := race.New(*cfg, logger)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	defer svc.Close()

	if serveAddr != "" {
		return serve(ctx, logger, svc, serveAddr)
	}

	if user1 == "" {
		fmt.Fprintln(os.Stderr, "usage: deathrace -user1 <name> [-user2 <name>] | -serve <addr>")
		os.Exit(1)
	}

	now := time.Now()
	today := record.Day(now.Year(), now.Month(), now.Day())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if user2 != "" {
		return enc.Encode(svc.Compare(ctx, user1, user2, today, feminine1, feminine2))
	}
	return enc.Encode(svc.Snapshot(ctx, user1, today, feminine1))
}

// loadConfig reads the YAML file if given and overlays environment
// defaults for cache location and TTL.
func loadConfig(path string) (*race.Config, error) {
	cfg := &race.Config{}
	if path != "" {
		loaded, err := race.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = env("LB_CACHE_DIR", "cache")
	}
	if cfg.CacheTTL <= 0 {
		seconds, err := strconv.Atoi(env("LB_CACHE_TTL", "3600"))
		if err != nil || seconds <= 0 {
			seconds = 3600
		}
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}
	return cfg, nil
}

func serve(ctx context.Context, logger *slog.Logger, svc *race.Service, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("deathrace: serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
