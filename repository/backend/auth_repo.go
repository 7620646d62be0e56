package backend

import (
	"context"
	"net/http"

	backendInfra "github.com/taskflow/client/internal/infrastructure/backend"
	"github.com/taskflow/client/repository"
)

type authRepository struct {
	client *backendInfra.Client
}

// NewAuthRepository creates the HTTP-backed auth repository. Its endpoints
// are the only unauthenticated calls the client makes.
func NewAuthRepository(client *backendInfra.Client) repository.AuthRepository {
	return &authRepository{client: client}
}

func (r *authRepository) SignIn(ctx context.Context, creds repository.Credentials) (*repository.AuthResult, error) {
	var result repository.AuthResult
	if err := r.client.DoJSON(ctx, http.MethodPost, "/auth/signin", "", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *authRepository) SignUp(ctx context.Context, input repository.SignUpInput) (*repository.AuthResult, error) {
	var result repository.AuthResult
	if err := r.client.DoJSON(ctx, http.MethodPost, "/auth/signup", "", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
