// Package client is the CLI side of the auth API: it exchanges credentials
// for a bearer token and caches the result in the local session.
//
// Domain errors come back as apperror values so the CLI can show the same
// messages as the server sends:
//
//	400 "Username already exists" → apperror.DuplicateUsername
//	401 on signin                 → apperror.InvalidCredentials
//	no response at all            → apperror.Network
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"

	"github.com/sakif/snippetbox/internal/apperror"
)

// SessionStore is where signin caches its result.
type SessionStore interface {
	Save(ctx context.Context, token, username string) error
	Current(ctx context.Context) (token, username string, ok bool, err error)
	Clear(ctx context.Context) error
}

// AuthClient talks to the auth server.
type AuthClient struct {
	baseURL string
	http    *http.Client
	session SessionStore
	logger  *slog.Logger
}

// NewAuthClient returns a client for the server at baseURL. timeout bounds
// each request.
func NewAuthClient(baseURL string, timeout time.Duration, session SessionStore, logger *slog.Logger) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
		logger:  logger,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type signupBody struct {
	Message string `json:"message"`
	User    struct {
		Username string `json:"username"`
	} `json:"user"`
}

type signinBody struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Signup registers an account. It does not sign in.
func (c *AuthClient) Signup(ctx context.Context, username, password string) (string, error) {
	var (
		out     signupBody
		errResp errorBody
	)
	err := c.request("/api/auth/signup", &errResp).
		Method(http.MethodPost).
		BodyJSON(credentials{Username: username, Password: password}).
		ToJSON(&out).
		Fetch(ctx)
	if err != nil {
		switch {
		case requests.HasStatusErr(err, http.StatusBadRequest) && isUsernameTaken(username, errResp):
			return "", apperror.DuplicateUsername(username)
		case requests.HasStatusErr(err, http.StatusBadRequest):
			return "", apperror.ValidationFailed("", serverMessage(errResp, "Signup rejected"))
		}
		return "", c.fail("signup", err, errResp)
	}

	c.logger.Info("signed up", slog.String("username", out.User.Username))
	return out.User.Username, nil
}

// Signin exchanges credentials for a token and caches both token and
// username in the session.
func (c *AuthClient) Signin(ctx context.Context, username, password string) (string, error) {
	var (
		out     signinBody
		errResp errorBody
	)
	err := c.request("/api/auth/signin", &errResp).
		Method(http.MethodPost).
		BodyJSON(credentials{Username: username, Password: password}).
		ToJSON(&out).
		Fetch(ctx)
	if err != nil {
		switch {
		case requests.HasStatusErr(err, http.StatusUnauthorized):
			return "", apperror.InvalidCredentials()
		case requests.HasStatusErr(err, http.StatusBadRequest):
			return "", apperror.ValidationFailed("", serverMessage(errResp, "Signin rejected"))
		}
		return "", c.fail("signin", err, errResp)
	}
	if out.Token == "" {
		return "", fmt.Errorf("client: signin response has no token")
	}

	if err := c.session.Save(ctx, out.Token, out.Username); err != nil {
		return "", err
	}
	c.logger.Info("signed in", slog.String("username", out.Username))
	return out.Username, nil
}

// Logout forgets the cached token. The server keeps no session to end.
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// Whoami calls the protected endpoint with the cached token and returns
// its greeting. A rejected token is cleared from the session.
func (c *AuthClient) Whoami(ctx context.Context) (string, error) {
	token, _, ok, err := c.session.Current(ctx)
	if err != nil {
		return "", err
	}
	if !ok || token == "" {
		return "", apperror.Unauthorized("Not signed in")
	}

	var (
		out     messageBody
		errResp errorBody
	)
	err = c.request("/api/protected", &errResp).
		Bearer(token).
		ToJSON(&out).
		Fetch(ctx)
	if err != nil {
		if requests.HasStatusErr(err, http.StatusUnauthorized) {
			if clearErr := c.session.Clear(ctx); clearErr != nil {
				c.logger.Warn("failed to clear rejected session", slog.String("error", clearErr.Error()))
			}
			return "", apperror.Unauthorized("Session expired, please sign in again")
		}
		return "", c.fail("protected", err, errResp)
	}
	return out.Message, nil
}

// Ping checks the server's health endpoint.
func (c *AuthClient) Ping(ctx context.Context) error {
	var errResp errorBody
	if err := c.request("/healthz", &errResp).Fetch(ctx); err != nil {
		return c.fail("healthz", err, errResp)
	}
	return nil
}

// request starts a builder for path with the shared client. Error bodies
// are decoded into errResp.
func (c *AuthClient) request(path string, errResp *errorBody) *requests.Builder {
	return requests.URL(c.baseURL).
		Path(path).
		Client(c.http).
		Accept("application/json").
		AddValidator(requests.ValidatorHandler(
			requests.DefaultValidator,
			requests.ToJSON(errResp),
		))
}

// fail turns an unexpected failure into an error. Anything that is not an
// HTTP status from the server is a transport failure.
func (c *AuthClient) fail(op string, err error, errResp errorBody) error {
	var statusErr *requests.ResponseError
	if errors.As(err, &statusErr) {
		c.logger.Warn("auth server error",
			slog.String("op", op),
			slog.Int("status", statusErr.StatusCode),
		)
		return fmt.Errorf("client: %s: %s", op, serverMessage(errResp, http.StatusText(statusErr.StatusCode)))
	}
	c.logger.Warn("auth server unreachable",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return apperror.Network(err)
}

// isUsernameTaken recognises the duplicate-username reply by its code or,
// from servers that send only the message, by its text.
func isUsernameTaken(username string, e errorBody) bool {
	return e.Code == "conflict" || e.Error == apperror.DuplicateUsername(username).Message
}

func serverMessage(e errorBody, fallback string) string {
	if e.Error != "" {
		return e.Error
	}
	return fallback
}
