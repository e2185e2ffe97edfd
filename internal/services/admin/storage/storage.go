package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// SessionRecord is a signed-in staff session.
type SessionRecord struct {
	ID        string
	Token     string
	UserName  string
	Role      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LoginAttempts tracks failed sign-ins for one client.
type LoginAttempts struct {
	ClientKey     string
	Failed        int
	LastFailureAt time.Time
	// LockedAt is zero while the client is not locked.
	LockedAt time.Time
}

// SessionStore persists staff sessions.
type SessionStore interface {
	PutSession(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (SessionRecord, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// LoginAttemptStore persists failed sign-in counters.
type LoginAttemptStore interface {
	GetLoginAttempts(ctx context.Context, clientKey string) (LoginAttempts, error)
	PutLoginAttempts(ctx context.Context, attempts LoginAttempts) error
	ClearLoginAttempts(ctx context.Context, clientKey string) error
}

// Store is a composite interface for admin storage concerns.
type Store interface {
	SessionStore
	LoginAttemptStore
	Close() error
}
