package bolt

import (
	"context"

	"github.com/taskflow/client/domain"
	"github.com/taskflow/client/internal/infrastructure/storage"
	"github.com/taskflow/client/repository"
)

const snapshotKey = "tasks"

type snapshotRepository struct {
	store *storage.Store
}

// NewSnapshotRepository persists the last task list seen, for the stale
// startup view before the first refresh.
func NewSnapshotRepository(store *storage.Store) repository.SnapshotRepository {
	return &snapshotRepository{store: store}
}

func (r *snapshotRepository) Load(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	found, err := r.store.Get(storage.BucketSnapshot, snapshotKey, &tasks)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return tasks, nil
}

func (r *snapshotRepository) Save(ctx context.Context, tasks []domain.Task) error {
	return r.store.Put(storage.BucketSnapshot, snapshotKey, tasks)
}

func (r *snapshotRepository) Clear(ctx context.Context) error {
	return r.store.Delete(storage.BucketSnapshot, snapshotKey)
}
