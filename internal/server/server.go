// Package server sets up the auth HTTP server, router, and route
// definitions.
//
// This is the composition root: every dependency of the auth API is built
// and wired in New, so main.go stays minimal and tests can build the same
// router without starting a listener.
//
//	config.Server → sqlite.DB → AuthService → AuthHandler → chi routes
//	                           ↗ TokenService, PasswordService
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippetbox/internal/auth"
	"github.com/sakif/snippetbox/internal/config"
	"github.com/sakif/snippetbox/internal/handler"
	"github.com/sakif/snippetbox/internal/middleware"
	sqliteRepo "github.com/sakif/snippetbox/internal/repository/sqlite"
	"github.com/sakif/snippetbox/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection and closes it on shutdown, after
// in-flight requests have finished.
type Server struct {
	router *chi.Mux
	config config.Server
	logger *slog.Logger
	db     *sqliteRepo.DB
	auth   *service.AuthService
}

// New opens the database, builds the services and registers the routes.
// With SeedDemoUser set, the demo account is created if missing.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)
	authService := service.NewAuthService(db, tokens, passwords, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		auth:   authService,
	}

	if cfg.SeedDemoUser {
		if err := authService.SeedUser(ctx, cfg.DemoUsername, cfg.DemoPassword); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding demo user: %w", err)
		}
		logger.Info("demo user available", slog.String("username", cfg.DemoUsername))
	}

	s.setupRoutes(tokens)
	return s, nil
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST /api/auth/signup → create account
// POST /api/auth/signin → exchange credentials for a JWT
// GET  /api/protected   → greet the token's owner (bearer token required)
// GET  /healthz         → database reachability
//
// MIDDLEWARE ORDER:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger: logs each request with timing info
// 4. Recoverer: catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	authHandler := handler.NewAuthHandler(s.auth, s.logger)

	s.router.Get("/healthz", handler.HealthHandler(s.db, s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/signin", authHandler.HandleSignin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/protected", authHandler.HandleProtected)
		})
	})
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Duration("token_ttl", s.config.TokenTTL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
