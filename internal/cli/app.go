// Package cli is the snippets command-line client: the snippet manager
// itself, backed by a local key-value store, plus the account commands that
// talk to the auth server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/client"
	"github.com/sakif/snippetbox/internal/config"
	"github.com/sakif/snippetbox/internal/kv"
	"github.com/sakif/snippetbox/internal/repository/local"
	"github.com/sakif/snippetbox/internal/service"
)

// App holds everything a command needs, built once per invocation.
type App struct {
	Snippets *service.SnippetService
	Drafts   *service.DraftService
	Auth     *client.AuthClient
	Session  *local.Session
	Prefs    *local.Preferences
	Logger   *slog.Logger

	closer io.Closer
}

// OpenFunc builds the App for a loaded config.
type OpenFunc func(cfg config.Client, logger *slog.Logger) (*App, error)

// NewApp wires the services over store.
func NewApp(store kv.Store, cfg config.Client, logger *slog.Logger) *App {
	session := local.NewSession(store)
	drafts := local.NewDraftStore(store, logger)
	return &App{
		Snippets: service.NewSnippetService(local.NewCollection(store, logger), drafts, logger),
		Drafts:   service.NewDraftService(drafts, logger),
		Auth:     client.NewAuthClient(cfg.ServerURL, cfg.Timeout, session, logger),
		Session:  session,
		Prefs:    local.NewPreferences(store),
		Logger:   logger,
	}
}

// OpenApp opens the SQLite store at cfg.StorePath and wires the App over it.
func OpenApp(cfg config.Client, logger *slog.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	store, err := kv.OpenSQLite(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	app := NewApp(store, cfg, logger)
	app.closer = store
	logger.Debug("store opened", slog.String("path", cfg.StorePath))
	return app, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// RequireUser returns the signed-in username. Snippet commands refuse to
// run without a cached session.
func (a *App) RequireUser(ctx context.Context) (string, error) {
	_, username, ok, err := a.Session.Current(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperror.Unauthorized("not signed in, run `snippets login <user>` first")
	}
	return username, nil
}

// Message returns the text to show for err: the user-facing message of an
// AppError, or the error itself.
func Message(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
