// Package service implements the refresh session lifecycle:
//
//	(none) --Create--> ACTIVE(s1) --Rotate(s1)--> ACTIVE(s2) --Revoke(s2)--> (none)
//
// Each raw secret is single use. Rotation claims the old record with an
// atomic get-and-delete before writing its successor, so of two racing
// rotations on one secret exactly one succeeds.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/platform/kv"
	"github.com/ShodmonX/taskflow-backend/internal/security"
	"github.com/ShodmonX/taskflow-backend/internal/session/domain"
)

// Manager issues, rotates and revokes refresh sessions.
type Manager struct {
	sessions *kv.Namespace[domain.RefreshSession]
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager returns a Manager writing records with the given lifetime.
func NewManager(store kv.Store, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: kv.NewNamespace[domain.RefreshSession](store, domain.KeyPrefix),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// TTL is the lifetime of every session record, also used as the cookie max-age.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create starts a new session chain for userID and returns the raw secret.
// This is the only point at which the raw secret exists server-side.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	return m.write(ctx, userID, "")
}

// Rotate consumes raw and issues its successor. It returns the new raw secret
// and the owning user. Unknown, reused, revoked, expired and malformed secrets
// all yield domain.ErrInvalidSession. If the successor cannot be written after
// the old record was claimed, the chain ends: the old secret is already gone.
func (m *Manager) Rotate(ctx context.Context, raw string) (string, string, error) {
	if !security.WellFormedSecret(raw) {
		return "", "", domain.ErrInvalidSession
	}
	old, err := m.sessions.Take(ctx, security.HashSecret(raw))
	if err != nil {
		switch {
		case errors.Is(err, kv.ErrNotFound):
			return "", "", domain.ErrInvalidSession
		case errors.Is(err, kv.ErrCorrupt):
			m.logger.Warn("discarded corrupt refresh session record", zap.Error(err))
			return "", "", domain.ErrInvalidSession
		}
		return "", "", fmt.Errorf("session: claim: %w", err)
	}
	next, err := m.write(ctx, old.UserID, old.ID)
	if err != nil {
		return "", "", err
	}
	return next, old.UserID, nil
}

// Revoke deletes the session for raw if it exists. It is idempotent.
func (m *Manager) Revoke(ctx context.Context, raw string) error {
	if !security.WellFormedSecret(raw) {
		return nil
	}
	if _, err := m.sessions.Delete(ctx, security.HashSecret(raw)); err != nil {
		return fmt.Errorf("session: revoke: %w", err)
	}
	return nil
}

func (m *Manager) write(ctx context.Context, userID, rotatedFrom string) (string, error) {
	raw, err := security.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("session: generate secret: %w", err)
	}
	rec := &domain.RefreshSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		CreatedAt:   m.now().UTC(),
		RotatedFrom: rotatedFrom,
	}
	if err := m.sessions.Put(ctx, security.HashSecret(raw), rec, m.ttl); err != nil {
		return "", fmt.Errorf("session: store: %w", err)
	}
	return raw, nil
}
