// Package session tracks refresh sessions in Redis keyed by the access token jti.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrSessionNotFound signals that no active session exists for the jti.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, userID uuid.UUID, jti string) (bool, error)
}

// Manager issues, rotates, and revokes refresh sessions.
type Manager struct {
	store sessionStore
	ttl   time.Duration
}

// NewManager builds a session manager with the given refresh TTL.
func NewManager(store sessionStore, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Generate records a new session for the user and returns its jti.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID) (string, error) {
	jti := uuid.NewString()
	key := m.store.AccessSessionKey(jti)
	if err := m.store.Set(ctx, key, userID.String(), m.ttl); err != nil {
		return "", err
	}
	return jti, nil
}

// Rotate atomically replaces the session behind oldJTI with a fresh one.
// The old session must still exist and belong to userID.
func (m *Manager) Rotate(ctx context.Context, userID uuid.UUID, oldJTI string) (string, error) {
	owner, err := m.store.Get(ctx, m.store.AccessSessionKey(oldJTI))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	if owner != userID.String() {
		return "", ErrSessionNotFound
	}

	newJTI, err := m.Generate(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := m.store.Del(ctx, m.store.AccessSessionKey(oldJTI)); err != nil {
		return "", err
	}
	return newJTI, nil
}

// Revoke removes the session for the jti. Revoking an absent session is a no-op.
func (m *Manager) Revoke(ctx context.Context, jti string) error {
	return m.store.Del(ctx, m.store.AccessSessionKey(jti))
}

// HasSession reports whether an active session exists for userID under jti.
func (m *Manager) HasSession(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	owner, err := m.store.Get(ctx, m.store.AccessSessionKey(jti))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	return owner == userID.String(), nil
}
