package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorrupt is returned when a stored value cannot be decoded.
var ErrCorrupt = errors.New("kv: corrupt value")

// Namespace stores JSON-encoded T values under prefix+id. Prefixes keep
// session and invite keys from colliding in a shared store.
type Namespace[T any] struct {
	store  Store
	prefix string
}

// NewNamespace returns a Namespace writing keys as prefix+id.
func NewNamespace[T any](store Store, prefix string) *Namespace[T] {
	return &Namespace[T]{store: store, prefix: prefix}
}

// Key returns the full store key for id.
func (n *Namespace[T]) Key(id string) string { return n.prefix + id }

func (n *Namespace[T]) Put(ctx context.Context, id string, v *T, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", n.prefix, err)
	}
	return n.store.Set(ctx, n.Key(id), b, ttl)
}

// Get returns the value under id, ErrNotFound, or ErrCorrupt.
func (n *Namespace[T]) Get(ctx context.Context, id string) (*T, error) {
	b, err := n.store.Get(ctx, n.Key(id))
	if err != nil {
		return nil, err
	}
	return decode[T](b)
}

// Take atomically reads and removes the value under id. See Store.GetDel.
func (n *Namespace[T]) Take(ctx context.Context, id string) (*T, error) {
	b, err := n.store.GetDel(ctx, n.Key(id))
	if err != nil {
		return nil, err
	}
	return decode[T](b)
}

func (n *Namespace[T]) Delete(ctx context.Context, id string) (bool, error) {
	return n.store.Delete(ctx, n.Key(id))
}

func decode[T any](b []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &v, nil
}
