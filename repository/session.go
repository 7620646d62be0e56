package repository

import (
	"context"

	"github.com/taskflow/client/domain"
)

// SessionRepository is the single owner of the persisted session. Everything
// else reads the token through it; nothing may cache the token independently.
type SessionRepository interface {
	Current(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// TokenSource hands out the current bearer token for outbound calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SessionStore is what a persisted session implementation provides: the
// repository surface plus the token read path.
type SessionStore interface {
	SessionRepository
	TokenSource
}
