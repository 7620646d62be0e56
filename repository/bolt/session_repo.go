// Package bolt implements the locally-persisted repositories on BoltDB.
package bolt

import (
	"context"

	"github.com/taskflow/client/domain"
	"github.com/taskflow/client/internal/infrastructure/storage"
	"github.com/taskflow/client/repository"
)

const sessionKey = "current"

type sessionRepository struct {
	store *storage.Store
}

// NewSessionRepository creates the Bolt-backed session store. It is the
// single source of truth for the token: HTTP calls and the realtime
// connection both read through it.
func NewSessionRepository(store *storage.Store) repository.SessionStore {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Current(ctx context.Context) (*domain.Session, error) {
	var session domain.Session
	found, err := r.store.Get(storage.BucketSession, sessionKey, &session)
	if err != nil {
		return nil, err
	}
	if !found || session.Token == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return domain.ErrInvalidPayload
	}
	return r.store.Put(storage.BucketSession, sessionKey, session)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(storage.BucketSession, sessionKey)
}

// Token implements repository.TokenSource.
func (r *sessionRepository) Token(ctx context.Context) (string, error) {
	session, err := r.Current(ctx)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}
