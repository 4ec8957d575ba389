package local

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippetbox/internal/kv"
	"github.com/sakif/snippetbox/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func sampleSnippet(id string) model.Snippet {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.Snippet{
		ID:        id,
		Title:     "Hi",
		Language:  "python",
		Code:      "print(1)",
		Tags:      []string{"demo"},
		CreatedAt: now,
		UpdatedAt: now,
		Versions:  []model.Version{},
	}
}

// =========================================================================
// COLLECTION
// =========================================================================

func TestCollection_LoadEmptyStore(t *testing.T) {
	var logs bytes.Buffer
	c := NewCollection(kv.NewMemory(), newTestLogger(&logs))

	snippets, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snippets)
	assert.Empty(t, snippets)
}

func TestCollection_LoadUnparsableIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":"x"}`, `"snippets"`, `null`} {
		t.Run(raw, func(t *testing.T) {
			var logs bytes.Buffer
			store := kv.NewMemory()
			require.NoError(t, store.Set(context.Background(), SnippetsKey, raw))

			snippets, err := NewCollection(store, newTestLogger(&logs)).Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, snippets)
		})
	}
}

func TestCollection_SaveLoadRoundTrip(t *testing.T) {
	var logs bytes.Buffer
	c := NewCollection(kv.NewMemory(), newTestLogger(&logs))
	ctx := context.Background()

	deleted := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	trashed := sampleSnippet("b")
	trashed.DeletedAt = &deleted

	require.NoError(t, c.Save(ctx, []model.Snippet{sampleSnippet("a"), trashed}))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[0].DeletedAt)
	require.NotNil(t, got[1].DeletedAt)
	assert.True(t, got[1].DeletedAt.Equal(deleted))
}

func TestCollection_SaveUsesWireNames(t *testing.T) {
	var logs bytes.Buffer
	store := kv.NewMemory()
	c := NewCollection(store, newTestLogger(&logs))

	require.NoError(t, c.Save(context.Background(), []model.Snippet{sampleSnippet("a")}))

	raw, err := store.Get(context.Background(), SnippetsKey)
	require.NoError(t, err)
	for _, name := range []string{`"isFavorite":false`, `"deletedAt":null`, `"versions":[]`, `"createdAt"`} {
		assert.Contains(t, raw, name)
	}
}

func TestCollection_WarnsWhenAnotherWriterChangedTheBlob(t *testing.T) {
	var logs bytes.Buffer
	store := kv.NewMemory()
	ctx := context.Background()

	first := NewCollection(store, newTestLogger(&logs))
	second := NewCollection(store, newTestLogger(&logs))

	_, err := first.Load(ctx)
	require.NoError(t, err)
	_, err = second.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, second.Save(ctx, []model.Snippet{sampleSnippet("from-second")}))
	assert.NotContains(t, logs.String(), "changed since load")

	// first still holds the pre-save view: last writer wins, with a warning
	require.NoError(t, first.Save(ctx, []model.Snippet{sampleSnippet("from-first")}))
	assert.Contains(t, logs.String(), "changed since load")

	got, err := first.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "from-first", got[0].ID)
}

// =========================================================================
// DRAFTS
// =========================================================================

func TestDraftStore_RoundTrip(t *testing.T) {
	var logs bytes.Buffer
	store := kv.NewMemory()
	d := NewDraftStore(store, newTestLogger(&logs))
	ctx := context.Background()

	draft := model.Draft{Title: "wip", Code: "fmt.Println()", Language: "go"}
	require.NoError(t, d.PutDraft(ctx, "new", draft))

	_, err := store.Get(ctx, "snippet-draft-new")
	require.NoError(t, err, "draft must live under the snippet-draft-new key")

	got, err := d.GetDraft(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wip", got.Title)
	assert.Equal(t, []string{}, got.Tags)

	sessions, err := d.ListDraftSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, sessions)

	require.NoError(t, d.DeleteDraft(ctx, "new"))
	got, err = d.GetDraft(ctx, "new")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftStore_UnreadableDraftIsAbsent(t *testing.T) {
	var logs bytes.Buffer
	store := kv.NewMemory()
	require.NoError(t, store.Set(context.Background(), "snippet-draft-abc", "{{"))

	got, err := NewDraftStore(store, newTestLogger(&logs)).GetDraft(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Contains(t, logs.String(), "unreadable draft")
}

// =========================================================================
// SESSION AND PREFERENCES
// =========================================================================

func TestSession_SaveCurrentClear(t *testing.T) {
	s := NewSession(kv.NewMemory())
	ctx := context.Background()

	_, _, ok, err := s.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "tok", "demo"))
	token, username, ok, err := s.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "demo", username)

	require.NoError(t, s.Clear(ctx))
	_, _, ok, err = s.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreferences_DarkMode(t *testing.T) {
	store := kv.NewMemory()
	p := NewPreferences(store)
	ctx := context.Background()

	on, err := p.DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, p.SetDarkMode(ctx, true))
	raw, _ := store.Get(ctx, DarkModeKey)
	assert.Equal(t, "true", raw)

	on, err = p.DarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)
}
