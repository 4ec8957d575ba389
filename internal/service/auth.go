// AuthService is the business logic layer for authentication. It sits
// between the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It does not read requests or write responses; the handler does that.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/auth"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/repository"
)

// Credential limits.
const (
	MaxUsernameLength = 64
	MinPasswordLength = 1
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by Signin: the user record and the issued JWT.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers username with a bcrypt hash of password.
// A taken username fails with apperror.DuplicateUsername.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("signup rejected: username taken", slog.String("username", username))
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Signin checks password against the stored hash and issues a token.
// An unknown username and a wrong password both fail with
// apperror.InvalidCredentials, after the same amount of bcrypt work.
func (s *AuthService) Signin(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.VerifyDummy(password)
			s.logger.Info("signin rejected", slog.String("username", username))
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unreadable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Info("signin rejected", slog.String("username", username))
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate validates a bearer token and returns its identity.
func (s *AuthService) Authenticate(token string) (*model.Identity, error) {
	identity, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperror.Unauthorized("Token expired")
		}
		return nil, apperror.Unauthorized("Invalid token")
	}
	return identity, nil
}

// SeedUser creates username unless it already exists. Used for the demo
// account at startup.
func (s *AuthService) SeedUser(ctx context.Context, username, password string) error {
	_, err := s.Signup(ctx, username, password)
	if err != nil && !errors.Is(err, apperror.ErrConflict) {
		return fmt.Errorf("service/auth: seeding %q: %w", username, err)
	}
	return nil
}

func validateCredentials(username, password string) error {
	if username == "" {
		return apperror.ValidationFailed("username", "Username is required")
	}
	if len(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password", "Password is required")
	}
	return nil
}
