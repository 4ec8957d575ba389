package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/auth"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/service"
)

// Accounts is the part of service.AuthService the handlers use.
type Accounts interface {
	Signup(ctx context.Context, username, password string) (*model.User, error)
	Signin(ctx context.Context, username, password string) (*service.AuthResult, error)
}

var _ Accounts = (*service.AuthService)(nil)

// AuthHandler serves signup, signin and the protected probe.
//
//   - HandleSignup    → POST /api/auth/signup
//   - HandleSignin    → POST /api/auth/signin
//   - HandleProtected → GET  /api/protected (behind auth.RequireAuth)
type AuthHandler struct {
	accounts Accounts
	logger   *slog.Logger
}

func NewAuthHandler(accounts Accounts, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// CredentialsRequest is the body of signup and signin.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupResponse is returned with 200 OK.
type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type UserResponse struct {
	Username string `json:"username"`
}

// SigninResponse carries the bearer token.
type SigninResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// MessageResponse is a plain {"message": ...} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/auth/signup {"username","password"}
// 200 {"message":"User created","user":{"username"}}, 400 on a taken name.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SignupResponse{
		Message: "User created",
		User:    UserResponse{Username: user.Username},
	})
}

// HandleSignin exchanges credentials for a token.
//
// HTTP: POST /api/auth/signin {"username","password"}
// 200 {"token","username"}, 401 {"error":"Invalid credentials"}.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.accounts.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SigninResponse{
		Token:    res.Token,
		Username: res.User.Username,
	})
}

// HandleProtected greets the token's owner. It only runs behind
// auth.RequireAuth.
//
// HTTP: GET /api/protected
func (h *AuthHandler) HandleProtected(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing bearer token"))
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Hello, " + identity.Username,
	})
}
