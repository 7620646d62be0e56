package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/taskflow/client/domain"
	"github.com/taskflow/client/repository"
)

type fakeAuthRepo struct {
	result *repository.AuthResult
	err    error
}

func (f *fakeAuthRepo) SignIn(ctx context.Context, creds repository.Credentials) (*repository.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthRepo) SignUp(ctx context.Context, input repository.SignUpInput) (*repository.AuthResult, error) {
	return f.result, f.err
}

type fakeUserRepo struct {
	user *domain.User
	err  error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return nil, nil
}

type fakeSessionRepo struct {
	session *domain.Session
	saves   int
}

func (f *fakeSessionRepo) Current(ctx context.Context) (*domain.Session, error) {
	if f.session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return f.session, nil
}

func (f *fakeSessionRepo) Save(ctx context.Context, s *domain.Session) error {
	f.saves++
	f.session = s
	return nil
}

func (f *fakeSessionRepo) Clear(ctx context.Context) error {
	f.session = nil
	return nil
}

type fakeRealtime struct {
	disconnects int
}

func (f *fakeRealtime) Disconnect() { f.disconnects++ }

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "7"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestSignInPersistsFullIdentity(t *testing.T) {
	authRepo := &fakeAuthRepo{result: &repository.AuthResult{UserID: 7, Token: "tok"}}
	users := &fakeUserRepo{user: &domain.User{ID: 7, Email: "ada@example.com", FirstName: "Ada"}}
	sessions := &fakeSessionRepo{}
	uc := New(authRepo, users, sessions, nil, nil)

	session, err := uc.SignIn(context.Background(), repository.Credentials{Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if session.Token != "tok" || session.User.Email != "ada@example.com" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if sessions.saves != 2 {
		t.Fatalf("expected token-then-identity save sequence, got %d saves", sessions.saves)
	}
}

func TestSignInKeepsMinimalSessionWhenIdentityFetchFails(t *testing.T) {
	authRepo := &fakeAuthRepo{result: &repository.AuthResult{UserID: 7, Token: "tok"}}
	users := &fakeUserRepo{err: domain.NewError(domain.ErrCodeNetwork, "down")}
	sessions := &fakeSessionRepo{}
	uc := New(authRepo, users, sessions, nil, nil)

	session, err := uc.SignIn(context.Background(), repository.Credentials{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("sign in must succeed despite identity fetch failure: %v", err)
	}
	if session.Token != "tok" || session.User.ID != 7 {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.User.Email != "" {
		t.Fatal("identity must stay minimal")
	}
}

func TestSignInSurfacesBackendRejection(t *testing.T) {
	authRepo := &fakeAuthRepo{err: domain.ErrUnauthorized}
	sessions := &fakeSessionRepo{}
	uc := New(authRepo, &fakeUserRepo{}, sessions, nil, nil)

	_, err := uc.SignIn(context.Background(), repository.Credentials{Email: "a@b.c", Password: "wrong"})
	if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if sessions.saves != 0 {
		t.Fatal("rejected sign-in must not persist anything")
	}
}

func TestSignOutTearsDownRealtimeFirst(t *testing.T) {
	sessions := &fakeSessionRepo{session: &domain.Session{Token: "tok", User: domain.User{ID: 7}}}
	realtime := &fakeRealtime{}
	uc := New(&fakeAuthRepo{}, &fakeUserRepo{}, sessions, realtime, nil)

	if err := uc.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if realtime.disconnects != 1 {
		t.Fatal("sign-out must disconnect the push channel")
	}
	if sessions.session != nil {
		t.Fatal("session must be cleared")
	}
}

func TestCurrentClearsExpiredSession(t *testing.T) {
	expired := &domain.Session{Token: token(t, time.Now().Add(-time.Hour)), User: domain.User{ID: 7}}
	sessions := &fakeSessionRepo{session: expired}
	uc := New(&fakeAuthRepo{}, &fakeUserRepo{}, sessions, nil, nil)

	_, err := uc.Current(context.Background())
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if sessions.session != nil {
		t.Fatal("expired session must be cleared from the store")
	}
}

func TestCurrentReturnsLiveSession(t *testing.T) {
	live := &domain.Session{Token: token(t, time.Now().Add(time.Hour)), User: domain.User{ID: 7}}
	sessions := &fakeSessionRepo{session: live}
	uc := New(&fakeAuthRepo{}, &fakeUserRepo{}, sessions, nil, nil)

	session, err := uc.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if session.User.ID != 7 {
		t.Fatalf("unexpected session: %+v", session)
	}
}
