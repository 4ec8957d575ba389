// Package service contains the business logic layer of the application.
//
// THE LAYERS:
//
//	CLI command / HTTP handler → parses input, renders output
//	Service                    → validates, enforces rules, orchestrates
//	Repository                 → reads/writes storage
//
// SnippetService owns every change to the snippet collection. Each command
// is one read-modify-write of the whole collection through the
// repository.SnippetCollection (load everything, change one snippet in
// memory, save everything), with the version-history bookkeeping done in the
// same step. Callers never see a half-applied command.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/query"
	"github.com/sakif/snippetbox/internal/repository"
)

// Validation limits and defaults.
const (
	MaxTitleLength  = 200
	MaxCodeLength   = 100000 // ~100KB of code
	DefaultLanguage = "javascript"
)

// SupportedLanguages are the languages offered when creating a snippet.
// Other values are accepted; this list only feeds flag completion.
var SupportedLanguages = []string{
	"javascript", "typescript", "python", "java", "c", "cpp", "csharp", "ruby",
	"go", "php", "swift", "kotlin", "rust", "scala", "shell", "json", "html", "css", "markdown",
}

// SnippetService handles business logic for code snippets.
type SnippetService struct {
	repo   repository.SnippetCollection
	drafts repository.DraftRepository
	logger *slog.Logger

	// now and newID are swapped in tests for deterministic output.
	now   func() time.Time
	newID func() string
}

// NewSnippetService creates a SnippetService. drafts is used to clear the
// draft of an edit session once that session's save succeeds.
func NewSnippetService(repo repository.SnippetCollection, drafts repository.DraftRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		drafts: drafts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return xid.New().String() },
	}
}

// List loads the collection and applies q. The Outcome tells an empty
// collection apart from filters that matched nothing.
func (s *SnippetService) List(ctx context.Context, q query.Query) ([]model.Snippet, query.Outcome, error) {
	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("listing snippets: %w", err)
	}
	result := query.Apply(all, q)
	return result, query.Describe(all, q, result), nil
}

// GetByID returns one snippet, active or trashed.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting snippet: %w", err)
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, apperror.NotFound("snippet", id)
	}
	return &all[i], nil
}

// Create validates f and adds a new snippet at the front of the collection.
// The new-snippet draft is discarded after the save.
func (s *SnippetService) Create(ctx context.Context, f model.Fields) (*model.Snippet, error) {
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	now := s.now()
	snippet := model.Snippet{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
		Versions:  []model.Version{},
	}
	setFields(&snippet, f)

	all = append([]model.Snippet{snippet}, all...)
	if err := s.repo.Save(ctx, all); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", f.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.clearDraft(ctx, NewDraftSession)

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
	)
	return &snippet, nil
}

// Edit replaces the user-authored fields of snippet id with f. The values
// being replaced are pushed onto the version history first. Trashed
// snippets can be edited too.
func (s *SnippetService) Edit(ctx context.Context, id string, f model.Fields) (*model.Snippet, error) {
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}

	snippet, err := s.mutate(ctx, id, func(sn *model.Snippet) error {
		applyEdit(sn, f, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.clearDraft(ctx, DraftSession(id))

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.Int("versions", len(snippet.Versions)),
	)
	return snippet, nil
}

// ToggleFavorite flips the favorite flag. It is not an edit: no version is
// recorded and UpdatedAt is left alone.
func (s *SnippetService) ToggleFavorite(ctx context.Context, id string) (*model.Snippet, error) {
	return s.mutate(ctx, id, func(sn *model.Snippet) error {
		sn.IsFavorite = !sn.IsFavorite
		return nil
	})
}

// SoftDelete moves an active snippet to the trash.
func (s *SnippetService) SoftDelete(ctx context.Context, id string) (*model.Snippet, error) {
	snippet, err := s.mutate(ctx, id, func(sn *model.Snippet) error {
		if !sn.Active() {
			return apperror.ValidationFailed("id", "snippet is already in the trash")
		}
		at := s.now()
		sn.DeletedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("snippet moved to trash", slog.String("id", id))
	return snippet, nil
}

// Restore brings a trashed snippet back to the active view.
func (s *SnippetService) Restore(ctx context.Context, id string) (*model.Snippet, error) {
	snippet, err := s.mutate(ctx, id, func(sn *model.Snippet) error {
		if sn.Active() {
			return apperror.ValidationFailed("id", "snippet is not in the trash")
		}
		sn.DeletedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("snippet restored from trash", slog.String("id", id))
	return snippet, nil
}

// PermanentDelete removes a trashed snippet, with its history, for good.
// Active snippets must go through the trash first.
func (s *SnippetService) PermanentDelete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	all, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("deleting snippet: %w", err)
	}
	i := indexOf(all, id)
	if i < 0 {
		return apperror.NotFound("snippet", id)
	}
	if all[i].Active() {
		return apperror.ValidationFailed("id", "only snippets in the trash can be permanently deleted")
	}

	all = append(all[:i], all[i+1:]...)
	if err := s.repo.Save(ctx, all); err != nil {
		return fmt.Errorf("deleting snippet: %w", err)
	}

	s.clearDraft(ctx, DraftSession(id))
	s.logger.Info("snippet permanently deleted", slog.String("id", id))
	return nil
}

// History returns the snippet's versions, most recent first.
func (s *SnippetService) History(ctx context.Context, id string) ([]model.Version, error) {
	snippet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.Versions == nil {
		return []model.Version{}, nil
	}
	return snippet.Versions, nil
}

// RestoreVersion makes Versions[index] the live state of snippet id.
func (s *SnippetService) RestoreVersion(ctx context.Context, id string, index int) (*model.Snippet, error) {
	snippet, err := s.mutate(ctx, id, func(sn *model.Snippet) error {
		return applyVersion(sn, index, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("snippet version restored",
		slog.String("id", id),
		slog.Int("index", index),
	)
	return snippet, nil
}

// Tags lists the distinct tags of active snippets.
func (s *SnippetService) Tags(ctx context.Context) ([]string, error) {
	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return query.Tags(all), nil
}

// Languages lists the distinct languages of active snippets.
func (s *SnippetService) Languages(ctx context.Context) ([]string, error) {
	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	return query.Languages(all), nil
}

// SuggestTags offers existing tags matching input that are not yet chosen.
func (s *SnippetService) SuggestTags(ctx context.Context, input string, chosen []string) ([]string, error) {
	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggesting tags: %w", err)
	}
	return query.SuggestTags(all, input, chosen), nil
}

// mutate is the read-modify-write cycle shared by the single-snippet
// commands. fn changes the snippet in place; returning an error aborts
// without saving.
func (s *SnippetService) mutate(ctx context.Context, id string, fn func(*model.Snippet) error) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	all, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snippets: %w", err)
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, apperror.NotFound("snippet", id)
	}

	if err := fn(&all[i]); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, all); err != nil {
		s.logger.Error("failed to save snippets",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving snippets: %w", err)
	}

	updated := all[i]
	return &updated, nil
}

// clearDraft drops a session's draft after a successful save. The save has
// already happened, so a failure here is only logged.
func (s *SnippetService) clearDraft(ctx context.Context, session string) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.DeleteDraft(ctx, session); err != nil {
		s.logger.Warn("failed to discard draft",
			slog.String("session", session),
			slog.String("error", err.Error()),
		)
	}
}

// normalize trims and validates user input. Title and code must be non-empty
// after trimming; tags are trimmed with empties and duplicates dropped.
func normalize(f model.Fields) (model.Fields, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Language = strings.TrimSpace(f.Language)

	if f.Title == "" {
		return f, apperror.ValidationFailed("title", "Title is required")
	}
	if len(f.Title) > MaxTitleLength {
		return f, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(f.Code) == "" {
		return f, apperror.ValidationFailed("code", "Code cannot be empty")
	}
	if len(f.Code) > MaxCodeLength {
		return f, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	if f.Language == "" {
		f.Language = DefaultLanguage
	}
	f.Tags = NormalizeTags(f.Tags)
	return f, nil
}

// NormalizeTags trims tags and drops empty and repeated ones, keeping the
// first occurrence's position.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func indexOf(all []model.Snippet, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
