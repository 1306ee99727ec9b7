// cmd/starsync/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"starsync/internal/config"
	"starsync/internal/github"
	"starsync/internal/notion"
	"starsync/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Synchronization failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize API clients
	ghClient, err := github.NewClient(cfg.GithubToken, cfg.GithubBaseURL, cfg.HTTPTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to create github client: %w", err)
	}
	notionClient, err := notion.NewClient(cfg.NotionToken, cfg.NotionDatabaseID, cfg.NotionBaseURL, cfg.HTTPTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to create notion client: %w", err)
	}

	// 5. Run a single reconciliation pass
	appSyncer := syncer.NewSyncer(ghClient, notionClient, logger, cfg.SyncConcurrency)
	result, err := appSyncer.Run(ctx)
	if err != nil {
		return fmt.Errorf("synchronization pass failed: %w", err)
	}
	if n := result.Failures(); n > 0 {
		logger.Warn("Synchronization pass completed with failures", "failures", n)
	}

	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
