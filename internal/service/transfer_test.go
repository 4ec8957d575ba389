package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
)

func TestExport_IsIndentedArray(t *testing.T) {
	env := newTestEnv(t)
	sn := env.create(t, "Hi", "print(1)")
	_, err := env.svc.SoftDelete(context.Background(), sn.ID)
	require.NoError(t, err)

	data, err := env.svc.Export(context.Background())
	require.NoError(t, err)

	assert.Contains(t, string(data), "[\n  {\n    \"id\": \"s1\"")

	var back []model.Snippet
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.NotNil(t, back[0].DeletedAt, "trash is exported too")
}

func TestExport_EmptyCollection(t *testing.T) {
	env := newTestEnv(t)

	data, err := env.svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestImport_ReplacesCollection(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "old", "old")

	payload := `[
		{"id":"a","title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z","tags":["t"]},
		{"id":"b","title":"B","code":"y","language":"go","createdAt":"2024-01-02T00:00:00Z",
		 "deletedAt":"2024-02-01T00:00:00Z","versions":[{"title":"B0","code":"y0","savedAt":"2024-01-02T00:00:00Z"}]}
	]`

	n, err := env.svc.Import(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all := env.load(t)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, DefaultLanguage, all[0].Language)
	assert.Equal(t, all[0].CreatedAt, all[0].UpdatedAt)
	assert.NotNil(t, all[0].Versions)
	assert.Equal(t, "b", all[1].ID)
	assert.NotNil(t, all[1].DeletedAt)
	require.Len(t, all[1].Versions, 1)
	assert.Equal(t, "y0", all[1].Versions[0].Code)
}

func TestImport_NormalizesTags(t *testing.T) {
	env := newTestEnv(t)

	payload := `[{"id":"a","title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z",
		"tags":["a","a"," ","b "],
		"versions":[{"title":"A0","code":"x0","tags":null,"savedAt":"2024-01-01T00:00:00Z"}]}]`

	_, err := env.svc.Import(context.Background(), []byte(payload))
	require.NoError(t, err)

	all := env.load(t)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"a", "b"}, all[0].Tags)
	require.Len(t, all[0].Versions, 1)
	assert.NotNil(t, all[0].Versions[0].Tags)
	assert.Empty(t, all[0].Versions[0].Tags)
}

func TestImport_EmptyArrayClearsCollection(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "old", "old")

	n, err := env.svc.Import(context.Background(), []byte(" [] "))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, env.load(t))
}

func TestImport_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"object instead of array", `{"id":"a","title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z"}`},
		{"string", `"snippets"`},
		{"empty file", ``},
		{"truncated json", `[{"id":"a"`},
		{"record missing id", `[{"title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z"}]`},
		{"record missing title", `[{"id":"a","code":"x","createdAt":"2024-01-01T00:00:00Z"}]`},
		{"record missing code", `[{"id":"a","title":"A","createdAt":"2024-01-01T00:00:00Z"}]`},
		{"record missing createdAt", `[{"id":"a","title":"A","code":"x"}]`},
		{"record is not an object", `[42]`},
		{"wrong field type", `[{"id":"a","title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z","tags":"t"}]`},
		{"duplicate ids", `[
			{"id":"a","title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z"},
			{"id":"a","title":"B","code":"y","createdAt":"2024-01-01T00:00:00Z"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			existing := env.create(t, "keep", "keep")

			_, err := env.svc.Import(context.Background(), []byte(tt.payload))
			require.ErrorIs(t, err, apperror.ErrMalformedImport)

			all := env.load(t)
			require.Len(t, all, 1, "collection must be unchanged")
			assert.Equal(t, existing.ID, all[0].ID)
		})
	}
}

func TestImport_PartiallyValidAppliesNothing(t *testing.T) {
	env := newTestEnv(t)

	payload := `[
		{"id":"a","title":"A","code":"x","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"b","title":"","code":"y","createdAt":"2024-01-01T00:00:00Z"}
	]`
	_, err := env.svc.Import(context.Background(), []byte(payload))
	require.ErrorIs(t, err, apperror.ErrMalformedImport)
	assert.Contains(t, err.Error(), "record 1")
	assert.Empty(t, env.load(t))
}
