package repository

import (
	"context"

	"github.com/taskflow/client/domain"
)

// TaskRepository is the typed surface over the backend's task endpoints.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, input domain.CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Analyze(ctx context.Context, id int64, req domain.AnalyzeRequest) (*domain.TaskAnalysis, error)
}
