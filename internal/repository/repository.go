// Package repository declares the storage contracts the services depend on.
// Implementations live in the sub-packages: sqlite (server accounts) and
// local (the client's snippet collection, drafts and session).
package repository

import (
	"context"

	"github.com/sakif/snippetbox/internal/model"
)

// UserRepository stores auth server accounts.
type UserRepository interface {
	// CreateUser inserts user and fills in ID and CreatedAt.
	// A taken username yields apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SnippetCollection is the Storage Gateway: the whole snippet collection
// read and written as one value.
type SnippetCollection interface {
	// Load returns every stored snippet. Nothing stored, or unreadable
	// content, yields an empty slice and a nil error.
	Load(ctx context.Context) ([]model.Snippet, error)
	// Save replaces the stored collection with snippets.
	Save(ctx context.Context, snippets []model.Snippet) error
}

// DraftRepository persists at most one draft per edit session key.
type DraftRepository interface {
	GetDraft(ctx context.Context, session string) (*model.Draft, error)
	PutDraft(ctx context.Context, session string, draft model.Draft) error
	DeleteDraft(ctx context.Context, session string) error
	ListDraftSessions(ctx context.Context) ([]string, error)
}
