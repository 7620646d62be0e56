// Package auth orchestrates sign-in, sign-up, and sign-out around the
// persisted session. It is the only writer of the session store.
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/client/domain"
	"github.com/taskflow/client/repository"
)

// Realtime is the teardown surface the use case drives on sign-out.
type Realtime interface {
	Disconnect()
}

type UseCase struct {
	auth     repository.AuthRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	realtime Realtime
	logger   *zap.Logger
}

func New(
	auth repository.AuthRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	realtime Realtime,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		auth:     auth,
		users:    users,
		sessions: sessions,
		realtime: realtime,
		logger:   logger,
	}
}

// SignIn authenticates and persists the session. The identity fetch uses the
// freshly stored token, so the session is saved in two steps: token first,
// full user once the directory answered.
func (uc *UseCase) SignIn(ctx context.Context, creds repository.Credentials) (*domain.Session, error) {
	result, err := uc.auth.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	return uc.establish(ctx, result)
}

// SignUp creates the account and signs in with the returned token.
func (uc *UseCase) SignUp(ctx context.Context, input repository.SignUpInput) (*domain.Session, error) {
	result, err := uc.auth.SignUp(ctx, input)
	if err != nil {
		return nil, err
	}
	return uc.establish(ctx, result)
}

// SignOut tears down the realtime connection, then removes every trace of
// the session so an unauthenticated check reliably reports "no session".
func (uc *UseCase) SignOut(ctx context.Context) error {
	if uc.realtime != nil {
		uc.realtime.Disconnect()
	}
	if err := uc.sessions.Clear(ctx); err != nil {
		return err
	}
	uc.logger.Info("signed out")
	return nil
}

// Current returns the persisted session, clearing it when the token expired.
func (uc *UseCase) Current(ctx context.Context) (*domain.Session, error) {
	session, err := uc.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		uc.logger.Info("stored session expired, clearing")
		_ = uc.sessions.Clear(ctx)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) establish(ctx context.Context, result *repository.AuthResult) (*domain.Session, error) {
	session := &domain.Session{
		Token: result.Token,
		User:  domain.User{ID: result.UserID},
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByID(ctx, result.UserID)
	if err != nil {
		// signed in, identity fetch failed: keep the minimal session
		uc.logger.Warn("identity fetch after sign-in failed", zap.Int64("user_id", result.UserID), zap.Error(err))
		return session, nil
	}

	session.User = *user
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	uc.logger.Info("signed in", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return session, nil
}
