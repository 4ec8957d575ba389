// Package kv is the client's local key-value storage: the place the snippet
// collection, drafts, cached credentials and preferences live.
//
// Values are opaque strings. A Store never interprets them; callers own the
// encoding of whatever they put under a key.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set or was
// deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store reads and writes whole values under string keys.
//
// Set replaces the previous value in a single write; there are no partial
// updates and no cross-key transactions.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
