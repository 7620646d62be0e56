package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskflow/client/domain"
	backendInfra "github.com/taskflow/client/internal/infrastructure/backend"
	"github.com/taskflow/client/repository"
)

type userRepository struct {
	client *backendInfra.Client
	tokens repository.TokenSource
}

// NewUserRepository creates the HTTP-backed user repository.
func NewUserRepository(client *backendInfra.Client, tokens repository.TokenSource) repository.UserRepository {
	return &userRepository{client: client, tokens: tokens}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var user domain.User
	path := fmt.Sprintf("/v1/user/%d", id)
	if err := r.client.DoJSON(ctx, http.MethodGet, path, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := r.client.DoJSON(ctx, http.MethodGet, "/v1/user", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
