package repository

import (
	"context"

	"github.com/taskflow/client/domain"
)

// UserRepository fetches identities. Users are never mutated from the client.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
