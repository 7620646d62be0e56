package repository

import (
	"context"

	"github.com/taskflow/client/domain"
)

// SnapshotRepository persists the last known task list so the UI can show
// something (marked stale) before the first refresh completes.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]domain.Task, error)
	Save(ctx context.Context, tasks []domain.Task) error
	Clear(ctx context.Context) error
}
