package repository

import (
	"context"
	"time"

	"mosha-chat-backend/internal/domain/model"
)

// SessionRepository maps opaque session tokens to identity records.
// Consulted by every authenticated operation; sessions expire via TTL.
type SessionRepository interface {
	// Store records the session under the token with the given TTL.
	Store(ctx context.Context, token string, sess *model.Session, ttl time.Duration) error

	// Resolve returns the identity for the token, or
	// domain.ErrSessionExpired when absent or expired.
	Resolve(ctx context.Context, token string) (*model.Session, error)

	// Revoke removes the session. Resolving a revoked token fails.
	Revoke(ctx context.Context, token string) error
}
