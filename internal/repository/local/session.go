package local

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/snippetbox/internal/kv"
)

// Keys for the cached sign-in and the display preference.
const (
	TokenKey    = "token"
	UsernameKey = "username"
	DarkModeKey = "darkMode"
)

// Session caches the bearer token and username returned by signin so later
// commands run as the signed-in user.
type Session struct {
	store kv.Store
}

// NewSession returns a Session over store.
func NewSession(store kv.Store) *Session {
	return &Session{store: store}
}

// Save caches the credentials. The username is written last; Current treats
// a missing username as signed out.
func (s *Session) Save(ctx context.Context, token, username string) error {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("local: caching token: %w", err)
	}
	if err := s.store.Set(ctx, UsernameKey, username); err != nil {
		return fmt.Errorf("local: caching username: %w", err)
	}
	return nil
}

// Current returns the cached credentials. ok is false when nobody is signed
// in.
func (s *Session) Current(ctx context.Context) (token, username string, ok bool, err error) {
	username, err = s.store.Get(ctx, UsernameKey)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && username == "") {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("local: reading username: %w", err)
	}

	token, err = s.store.Get(ctx, TokenKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return "", "", false, fmt.Errorf("local: reading token: %w", err)
	}
	return token, username, true, nil
}

// Clear forgets the cached credentials. The server keeps no session, so this
// is all logout does.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("local: removing token: %w", err)
	}
	if err := s.store.Delete(ctx, UsernameKey); err != nil {
		return fmt.Errorf("local: removing username: %w", err)
	}
	return nil
}

// Preferences holds client display settings.
type Preferences struct {
	store kv.Store
}

// NewPreferences returns Preferences over store.
func NewPreferences(store kv.Store) *Preferences {
	return &Preferences{store: store}
}

// DarkMode reports the saved preference; unset or unreadable means light.
func (p *Preferences) DarkMode(ctx context.Context) (bool, error) {
	raw, err := p.store.Get(ctx, DarkModeKey)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("local: reading dark mode: %w", err)
	}
	on, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return on, nil
}

func (p *Preferences) SetDarkMode(ctx context.Context, on bool) error {
	if err := p.store.Set(ctx, DarkModeKey, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("local: saving dark mode: %w", err)
	}
	return nil
}
