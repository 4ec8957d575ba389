package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippetbox/internal/kv"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
)

// DraftKeyPrefix starts every draft key: "snippet-draft-new" for the new
// snippet form, "snippet-draft-<id>" for editing snippet <id>.
const DraftKeyPrefix = "snippet-draft-"

var _ repository.DraftRepository = (*DraftStore)(nil)

// DraftStore keeps one JSON-encoded draft per edit session, independent of
// the snippet collection.
type DraftStore struct {
	store  kv.Store
	logger *slog.Logger
}

// NewDraftStore returns a DraftStore over store.
func NewDraftStore(store kv.Store, logger *slog.Logger) *DraftStore {
	return &DraftStore{store: store, logger: logger}
}

// GetDraft returns the draft saved for session, or nil when there is none.
// A draft that no longer decodes counts as none.
func (d *DraftStore) GetDraft(ctx context.Context, session string) (*model.Draft, error) {
	raw, err := d.store.Get(ctx, DraftKeyPrefix+session)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("local: loading draft %s: %w", session, err)
	}

	var draft model.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		d.logger.Warn("ignoring unreadable draft",
			slog.String("session", session),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	return &draft, nil
}

// PutDraft saves draft for session, replacing any earlier one.
func (d *DraftStore) PutDraft(ctx context.Context, session string, draft model.Draft) error {
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("local: encoding draft %s: %w", session, err)
	}
	if err := d.store.Set(ctx, DraftKeyPrefix+session, string(data)); err != nil {
		return fmt.Errorf("local: saving draft %s: %w", session, err)
	}
	return nil
}

// DeleteDraft removes the draft for session. A missing draft is not an error.
func (d *DraftStore) DeleteDraft(ctx context.Context, session string) error {
	if err := d.store.Delete(ctx, DraftKeyPrefix+session); err != nil {
		return fmt.Errorf("local: deleting draft %s: %w", session, err)
	}
	return nil
}

// ListDraftSessions returns the sessions that currently have a draft.
func (d *DraftStore) ListDraftSessions(ctx context.Context) ([]string, error) {
	keys, err := d.store.Keys(ctx, DraftKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("local: listing drafts: %w", err)
	}
	sessions := make([]string, 0, len(keys))
	for _, k := range keys {
		sessions = append(sessions, strings.TrimPrefix(k, DraftKeyPrefix))
	}
	return sessions, nil
}
