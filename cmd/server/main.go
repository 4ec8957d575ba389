// Package main is the entry point for the snippetbox auth server.
//
// Its job is to read configuration, create the logger, and hand both to
// internal/server. All actual logic lives in the internal packages.
//
// Configuration comes from the environment, optionally seeded from a .env
// file in the working directory:
//
//	JWT_SECRET=$(openssl rand -hex 32) PORT=4000 SEED_DEMO_USER=true ./server
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/snippetbox/internal/config"
	"github.com/sakif/snippetbox/internal/server"
)

func main() {
	// Bootstrap logger until LOG_LEVEL is known.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadServer(".env")
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
