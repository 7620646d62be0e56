// Package tasks centralizes the optimistic-mutate/reconcile/rollback
// discipline. Every mutation call site goes through here so the cache can
// never be left in a partially-applied state: apply locally, call the
// backend, then reconcile with the server record or roll back the one
// mutation that failed. Failed calls are never retried automatically.
package tasks

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/client/domain"
	"github.com/taskflow/client/internal/cache"
	"github.com/taskflow/client/repository"
)

// EventSource is the realtime subscription surface the use case binds to.
type EventSource interface {
	OnEvent(handler func(domain.TaskEvent)) func()
}

type UseCase struct {
	cache    *cache.Synchronizer
	tasks    repository.TaskRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	snapshot repository.SnapshotRepository
	logger   *zap.Logger
	tempSeq  atomic.Int64
}

func New(
	sync *cache.Synchronizer,
	tasks repository.TaskRepository,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	snapshot repository.SnapshotRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		cache:    sync,
		tasks:    tasks,
		users:    users,
		sessions: sessions,
		snapshot: snapshot,
		logger:   logger,
	}
}

// nextTempID hands out client-local ids. Negative so they can never collide
// with a server-assigned id.
func (uc *UseCase) nextTempID() int64 {
	return -uc.tempSeq.Add(1)
}

// Refresh replaces the cache with the server's list. This is the correctness
// backstop after any reconnect and the periodic anti-drift measure.
func (uc *UseCase) Refresh(ctx context.Context) error {
	list, err := uc.tasks.List(ctx)
	if err != nil {
		return err
	}
	uc.cache.ReplaceAll(list)

	if uc.snapshot != nil {
		if err := uc.snapshot.Save(ctx, list); err != nil {
			uc.logger.Warn("task snapshot persist failed", zap.Error(err))
		}
	}
	uc.logger.Debug("task cache refreshed", zap.Int("count", len(list)))
	return nil
}

// RestoreSnapshot seeds the cache from the last persisted list so the UI has
// a (stale) view before the first refresh completes.
func (uc *UseCase) RestoreSnapshot(ctx context.Context) error {
	if uc.snapshot == nil {
		return nil
	}
	tasks, err := uc.snapshot.Load(ctx)
	if err != nil {
		return err
	}
	if len(tasks) > 0 {
		uc.cache.ReplaceAll(tasks)
	}
	return nil
}

// Visible returns the cached tasks created by or assigned to the signed-in
// user, in insertion order.
func (uc *UseCase) Visible(ctx context.Context) ([]domain.Task, error) {
	session, err := uc.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	me := session.User.ID
	return uc.cache.List(func(t domain.Task) bool { return t.VisibleTo(me) }), nil
}

// All returns every cached task.
func (uc *UseCase) All() []domain.Task {
	return uc.cache.List(nil)
}

// Create inserts the task optimistically under a temporary id, then swaps in
// the server record on success or removes the optimistic entry on failure.
func (uc *UseCase) Create(ctx context.Context, input domain.CreateTaskInput) (*domain.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	session, err := uc.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	tempID := uc.nextTempID()
	now := time.Now()
	optimistic := domain.Task{
		ID:             tempID,
		Title:          input.Title,
		Description:    input.Description,
		Priority:       input.Priority,
		Status:         input.Status,
		AssignedTo:     input.AssignedTo,
		AssignedToName: input.AssignedToName,
		CreatedBy:      session.User.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	token := uc.cache.ApplyOptimisticCreate(tempID, optimistic)

	created, err := uc.tasks.Create(ctx, input)
	if err != nil {
		uc.cache.Rollback(token)
		uc.logger.Warn("task create rolled back", zap.Int64("temp_id", tempID), zap.Error(err))
		return nil, err
	}

	uc.cache.ConfirmCreate(tempID, *created)
	uc.logger.Info("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

// Update patches the task optimistically, then reconciles with the server
// response. On failure the single mutation is rolled back; a NOT_FOUND
// additionally drops the entry, since the task vanished under a concurrent
// delete.
func (uc *UseCase) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	token := uc.cache.ApplyOptimistic(id, patch)

	updated, err := uc.tasks.Update(ctx, id, patch)
	if err != nil {
		uc.cache.Rollback(token)
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.cache.Remove(id)
			uc.logger.Info("task vanished during edit, dropped from cache", zap.Int64("task_id", id))
		} else {
			uc.logger.Warn("task update rolled back", zap.Int64("task_id", id), zap.Error(err))
		}
		return nil, err
	}

	uc.cache.ReconcileMutation(id, *updated)
	return updated, nil
}

// SetStatus is the inline status edit.
func (uc *UseCase) SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.Task, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown status "+string(status))
	}
	return uc.Update(ctx, id, domain.TaskPatch{Status: &status})
}

// SetPriority is the inline priority edit.
func (uc *UseCase) SetPriority(ctx context.Context, id int64, priority domain.Priority) (*domain.Task, error) {
	if !domain.ValidPriority(priority) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown priority "+string(priority))
	}
	return uc.Update(ctx, id, domain.TaskPatch{Priority: &priority})
}

// Reassign moves the task to another user, keeping the denormalized name in
// step with the directory.
func (uc *UseCase) Reassign(ctx context.Context, id int64, userID int64) (*domain.Task, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := user.DisplayName()
	return uc.Update(ctx, id, domain.TaskPatch{AssignedTo: &userID, AssignedToName: &name})
}

// Delete removes the task optimistically and confirms with the backend.
// A NOT_FOUND answer means a concurrent delete won the race; the local
// removal stands.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	token := uc.cache.Remove(id)

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Debug("task already deleted on server", zap.Int64("task_id", id))
			return nil
		}
		uc.cache.Rollback(token)
		uc.logger.Warn("task delete rolled back", zap.Int64("task_id", id), zap.Error(err))
		return err
	}
	uc.logger.Info("task deleted", zap.Int64("task_id", id))
	return nil
}

// Analyze requests the AI breakdown. The result is ephemeral: rendered once
// and discarded, never cached.
func (uc *UseCase) Analyze(ctx context.Context, id int64, req domain.AnalyzeRequest) (*domain.TaskAnalysis, error) {
	return uc.tasks.Analyze(ctx, id, req)
}

// AcceptSuggestion turns each proposed sub-task of a suggestion into a real
// task through the normal optimistic create flow. Returns the tasks created
// before the first failure, if any.
func (uc *UseCase) AcceptSuggestion(ctx context.Context, suggestion domain.Suggestion) ([]domain.Task, error) {
	session, err := uc.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]domain.Task, 0, len(suggestion.SubTasks))
	for _, sub := range suggestion.SubTasks {
		input := domain.CreateTaskInput{
			Title:          sub.Title,
			Description:    sub.Description,
			Priority:       sub.Priority,
			Status:         domain.StatusToDo,
			AssignedTo:     session.User.ID,
			AssignedToName: session.User.DisplayName(),
		}
		task, err := uc.Create(ctx, input)
		if err != nil {
			return created, err
		}
		created = append(created, *task)
	}
	return created, nil
}

// Users fetches the directory for assignee selection.
func (uc *UseCase) Users(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

// Subscribe registers a cache change listener for the presentation layer.
func (uc *UseCase) Subscribe(fn func()) func() {
	return uc.cache.Subscribe(fn)
}

// BindRealtime merges every push event into the cache and returns the
// unsubscribe function.
func (uc *UseCase) BindRealtime(source EventSource) func() {
	return source.OnEvent(func(ev domain.TaskEvent) {
		uc.cache.MergePush(ev)
	})
}
