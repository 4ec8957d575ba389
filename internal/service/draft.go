package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
)

// NewDraftSession is the session key of the new-snippet form.
const NewDraftSession = "new"

// DraftSession returns the session key for editing snippet id, or for the
// new-snippet form when id is empty.
func DraftSession(id string) string {
	if id == "" {
		return NewDraftSession
	}
	return id
}

// DraftService autosaves in-progress form state. A draft is only ever handed
// back to the caller to decide on; it is never merged into a snippet here.
type DraftService struct {
	drafts repository.DraftRepository
	logger *slog.Logger
}

func NewDraftService(drafts repository.DraftRepository, logger *slog.Logger) *DraftService {
	return &DraftService{drafts: drafts, logger: logger}
}

// Autosave stores the current form values for session, replacing any
// earlier draft. No validation happens: a draft may be half written.
func (s *DraftService) Autosave(ctx context.Context, session string, draft model.Draft) error {
	if err := s.drafts.PutDraft(ctx, session, draft); err != nil {
		return fmt.Errorf("autosaving draft: %w", err)
	}
	s.logger.Debug("draft saved", slog.String("session", session))
	return nil
}

// Pending returns the draft waiting for session, if any.
func (s *DraftService) Pending(ctx context.Context, session string) (*model.Draft, bool, error) {
	draft, err := s.drafts.GetDraft(ctx, session)
	if err != nil {
		return nil, false, fmt.Errorf("loading draft: %w", err)
	}
	return draft, draft != nil, nil
}

// Discard removes the draft for session. Discarding a missing draft is fine.
func (s *DraftService) Discard(ctx context.Context, session string) error {
	if err := s.drafts.DeleteDraft(ctx, session); err != nil {
		return fmt.Errorf("discarding draft: %w", err)
	}
	s.logger.Info("draft discarded", slog.String("session", session))
	return nil
}

// List returns the sessions that have a draft.
func (s *DraftService) List(ctx context.Context) ([]string, error) {
	sessions, err := s.drafts.ListDraftSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	return sessions, nil
}
