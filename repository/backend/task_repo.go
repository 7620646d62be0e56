// Package backend implements the repository interfaces over the remote HTTP
// API. Every call reads the bearer token from the session store at call time.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskflow/client/domain"
	backendInfra "github.com/taskflow/client/internal/infrastructure/backend"
	"github.com/taskflow/client/repository"
)

type taskRepository struct {
	client *backendInfra.Client
	tokens repository.TokenSource
}

// NewTaskRepository creates the HTTP-backed task repository.
func NewTaskRepository(client *backendInfra.Client, tokens repository.TokenSource) repository.TaskRepository {
	return &taskRepository{client: client, tokens: tokens}
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := r.client.DoJSON(ctx, http.MethodGet, "/v1/tasks", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, input domain.CreateTaskInput) (*domain.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var created domain.Task
	if err := r.client.DoJSON(ctx, http.MethodPost, "/v1/tasks", token, input, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *taskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.IsEmpty() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "empty task update")
	}
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var updated domain.Task
	path := fmt.Sprintf("/v1/tasks/%d", id)
	if err := r.client.DoJSON(ctx, http.MethodPut, path, token, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/v1/tasks/%d", id)
	return r.client.DoJSON(ctx, http.MethodDelete, path, token, nil, nil)
}

func (r *taskRepository) Analyze(ctx context.Context, id int64, req domain.AnalyzeRequest) (*domain.TaskAnalysis, error) {
	token, err := r.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	var analysis domain.TaskAnalysis
	path := fmt.Sprintf("/v1/tasks/%d/analyze", id)
	if err := r.client.DoJSON(ctx, http.MethodPost, path, token, req, &analysis); err != nil {
		return nil, err
	}
	if analysis.TaskID == 0 {
		analysis.TaskID = id
	}
	return &analysis, nil
}
