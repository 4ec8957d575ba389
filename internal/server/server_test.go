package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippetbox/internal/config"
)

func newTestServer(t *testing.T, seed bool) *httptest.Server {
	t.Helper()
	cfg := config.Server{
		Port:         0,
		DBPath:       ":memory:",
		JWTSecret:    "server-test-secret-0123456789",
		TokenTTL:     2 * time.Hour,
		BcryptCost:   4,
		SeedDemoUser: seed,
		DemoUsername: "demo",
		DemoPassword: "demo123",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, false)
	creds := map[string]string{"username": "alice", "password": "wonderland"}

	resp, body := postJSON(t, ts.URL+"/api/auth/signup", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User created", body["message"])

	resp, body = postJSON(t, ts.URL+"/api/auth/signup", creds)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already exists", body["error"])

	resp, body = postJSON(t, ts.URL+"/api/auth/signin", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	resp, body = postJSON(t, ts.URL+"/api/auth/signin", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer protected.Body.Close()
	require.Equal(t, http.StatusOK, protected.StatusCode)

	var hello map[string]string
	require.NoError(t, json.NewDecoder(protected.Body).Decode(&hello))
	assert.Equal(t, "Hello, alice", hello["message"])
}

func TestProtected_RequiresToken(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/protected")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSeedDemoUser(t *testing.T) {
	ts := newTestServer(t, true)

	resp, body := postJSON(t, ts.URL+"/api/auth/signin", map[string]string{"username": "demo", "password": "demo123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "demo", body["username"])
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/snippets")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
