// Package local implements the client-side repositories on top of a kv.Store:
// the snippet collection (Storage Gateway), drafts, the cached session and
// display preferences. Key names match the layout the web client used, so an
// exported browser profile maps one-to-one onto a store.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/sakif/snippetbox/internal/kv"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
)

// SnippetsKey is the single slot holding the serialized collection.
const SnippetsKey = "snippets"

var _ repository.SnippetCollection = (*Collection)(nil)

// Collection reads and writes the whole snippet list as one JSON array under
// SnippetsKey.
//
// LAST WRITER WINS:
// There is no locking across processes. Collection remembers the xxh3 digest
// of the blob it last loaded or saved; when Save finds a different blob in the
// store it logs a warning and overwrites it anyway.
type Collection struct {
	store  kv.Store
	logger *slog.Logger

	mu     sync.Mutex
	digest uint64
	seen   bool
}

// NewCollection returns a Collection over store.
func NewCollection(store kv.Store, logger *slog.Logger) *Collection {
	return &Collection{store: store, logger: logger}
}

// Load returns the stored snippets. A missing key, an empty value or content
// that does not decode as a snippet array all yield an empty slice.
func (c *Collection) Load(ctx context.Context) ([]model.Snippet, error) {
	raw, err := c.store.Get(ctx, SnippetsKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("local: loading snippets: %w", err)
	}

	c.remember(raw)

	if raw == "" {
		return []model.Snippet{}, nil
	}

	var snippets []model.Snippet
	if err := json.Unmarshal([]byte(raw), &snippets); err != nil {
		c.logger.Warn("stored snippet collection is unreadable, treating as empty",
			slog.String("error", err.Error()),
		)
		return []model.Snippet{}, nil
	}
	if snippets == nil {
		snippets = []model.Snippet{}
	}
	return snippets, nil
}

// Save serializes snippets and stores them in one write.
func (c *Collection) Save(ctx context.Context, snippets []model.Snippet) error {
	if snippets == nil {
		snippets = []model.Snippet{}
	}

	data, err := json.Marshal(snippets)
	if err != nil {
		return fmt.Errorf("local: encoding snippets: %w", err)
	}

	c.warnIfChanged(ctx)

	if err := c.store.Set(ctx, SnippetsKey, string(data)); err != nil {
		return fmt.Errorf("local: saving snippets: %w", err)
	}

	c.remember(string(data))
	return nil
}

func (c *Collection) remember(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.digest = xxh3.HashString(raw)
	c.seen = true
}

// warnIfChanged compares the stored blob with the one this Collection last
// saw. Read errors are ignored here; Save reports its own write error.
func (c *Collection) warnIfChanged(ctx context.Context) {
	c.mu.Lock()
	seen, digest := c.seen, c.digest
	c.mu.Unlock()

	if !seen {
		return
	}

	current, err := c.store.Get(ctx, SnippetsKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return
	}

	if xxh3.HashString(current) != digest {
		c.logger.Warn("snippet collection changed since load; overwriting",
			slog.String("key", SnippetsKey),
		)
	}
}
