// Package config loads settings for the two binaries: the auth server reads
// environment variables (optionally from a .env file), the snippets CLI
// reads a YAML file, SNIPPETS_* variables and flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Server is the auth server configuration.
type Server struct {
	Port         int           `env:"PORT"           envDefault:"4000"`
	DBPath       string        `env:"DB_PATH"        envDefault:"data/snippetbox.db"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"      envDefault:"2h"`
	BcryptCost   int           `env:"BCRYPT_COST"    envDefault:"10"`
	SeedDemoUser bool          `env:"SEED_DEMO_USER" envDefault:"false"`
	DemoUsername string        `env:"DEMO_USERNAME"  envDefault:"demo"`
	DemoPassword string        `env:"DEMO_PASSWORD"  envDefault:"demo123"`
	LogLevel     slog.Level    `env:"LOG_LEVEL"      envDefault:"INFO"`
}

// LoadServer reads the server configuration from the process environment,
// after loading dotenvFiles into it. Missing dotenv files are skipped;
// variables already set in the environment win over the files.
func LoadServer(dotenvFiles ...string) (Server, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return Server{}, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Server]()
	if err != nil {
		return Server{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// ParseServer reads the configuration from environ only. Used by tests.
func ParseServer(environ map[string]string) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Server{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values the server cannot start without.
func (c Server) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 16 characters"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
