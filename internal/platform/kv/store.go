// Package kv is the ephemeral key-value store that backs refresh sessions and
// invites. Every write carries a TTL and expiry is enforced by the store.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is a TTL key-value store with per-key atomic operations.
type Store interface {
	// Set writes value under key, replacing any previous value, expiring after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetDel atomically reads and deletes key. Of several concurrent callers on
	// the same key at most one receives the value; the rest get ErrNotFound.
	GetDel(ctx context.Context, key string) ([]byte, error)
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
