// Package cache implements the client-side task cache synchronizer: a single
// authoritative view of the task collection reconciling local optimistic
// mutations, server responses, and realtime push events.
//
// Conflict policy is last-write-by-arrival-order at the synchronizer. No
// field-level merge is attempted between a local optimistic mutation and a
// concurrent push for the same task.
package cache

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskflow/client/domain"
)

// Synchronizer owns the in-memory task collection visible to the UI. Tasks
// are stored in a map for O(1) lookup and a separate slice to preserve
// insertion order for stable iteration in List.
type Synchronizer struct {
	mu     sync.RWMutex
	tasks  map[int64]*domain.Task
	order  []int64
	subs   map[string]func()
	logger *zap.Logger
}

// New creates an empty synchronizer.
func New(logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		tasks:  make(map[int64]*domain.Task),
		subs:   make(map[string]func()),
		logger: logger,
	}
}

// List returns copies of the cached tasks in insertion order, filtered by the
// predicate. A nil predicate matches everything. Pure read.
func (s *Synchronizer) List(pred func(domain.Task) bool) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		t, ok := s.tasks[id]
		if !ok {
			continue
		}
		if pred == nil || pred(*t) {
			out = append(out, *t)
		}
	}
	return out
}

// Get returns a copy of one cached task.
func (s *Synchronizer) Get(id int64) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return *t, true
}

// Len returns the number of cached tasks.
func (s *Synchronizer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// ApplyOptimistic shallow-merges the patch into the cached entry and returns
// a rollback token capturing the pre-mutation snapshot. If the task is not
// cached this is a no-op returning an empty token.
func (s *Synchronizer) ApplyOptimistic(taskID int64, patch domain.TaskPatch) *RollbackToken {
	s.mu.Lock()
	entry, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("optimistic patch for uncached task", zap.Int64("task_id", taskID))
		return emptyToken()
	}

	snapshot := *entry
	patch.ApplyTo(entry)
	token := newToken(taskID, &snapshot)
	s.mu.Unlock()

	s.notify()
	return token
}

// ApplyOptimisticCreate inserts a task under a client-generated temporary id.
// Rolling back the returned token removes the entry again. If the id is
// already cached nothing happens and an empty token is returned.
func (s *Synchronizer) ApplyOptimisticCreate(tempID int64, task domain.Task) *RollbackToken {
	s.mu.Lock()
	if _, exists := s.tasks[tempID]; exists {
		s.mu.Unlock()
		s.logger.Warn("temp id already cached, skipping optimistic create", zap.Int64("temp_id", tempID))
		return emptyToken()
	}

	task.ID = tempID
	s.insertLocked(tempID, &task)
	token := newToken(tempID, nil)
	s.mu.Unlock()

	s.notify()
	return token
}

// ConfirmCreate atomically replaces the temporary entry with the
// server-assigned record. The insert happens even when the temp entry is
// already gone: the server record must not be lost.
func (s *Synchronizer) ConfirmCreate(tempID int64, serverTask domain.Task) {
	s.mu.Lock()
	s.deleteLocked(tempID)
	t := serverTask
	s.insertLocked(t.ID, &t)
	s.mu.Unlock()

	s.notify()
}

// ReconcileMutation overwrites the cached entry with the authoritative server
// response after a successful update. Upserts: arrival order wins even if a
// concurrent push removed the entry in the meantime.
func (s *Synchronizer) ReconcileMutation(taskID int64, serverTask domain.Task) {
	s.mu.Lock()
	t := serverTask
	t.ID = taskID
	s.insertLocked(taskID, &t)
	s.mu.Unlock()

	s.notify()
}

// Remove deletes the entry and returns a rollback token that reinserts it.
// Used for optimistic deletes; push-delete callers discard the token.
func (s *Synchronizer) Remove(taskID int64) *RollbackToken {
	s.mu.Lock()
	entry, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return emptyToken()
	}

	snapshot := *entry
	s.deleteLocked(taskID)
	token := newToken(taskID, &snapshot)
	s.mu.Unlock()

	s.notify()
	return token
}

// Rollback restores the pre-mutation snapshot captured in the token.
// Idempotent: a consumed or empty token is a no-op.
func (s *Synchronizer) Rollback(token *RollbackToken) {
	if token == nil {
		return
	}

	s.mu.Lock()
	if !token.valid || token.consumed {
		s.mu.Unlock()
		return
	}
	token.consumed = true

	if token.prev == nil {
		// mutation was a create: undo by removing the entry
		s.deleteLocked(token.taskID)
	} else {
		restored := *token.prev
		s.insertLocked(token.taskID, &restored)
	}
	s.mu.Unlock()

	s.notify()
}

// MergePush applies a realtime event. Created/updated upsert by id, deleted
// removes by id. Safe against uncached ids: delete-of-absent is a no-op,
// create/update-of-absent inserts.
func (s *Synchronizer) MergePush(ev domain.TaskEvent) {
	switch ev.Kind {
	case domain.EventTaskCreated, domain.EventTaskUpdated:
		if ev.Task == nil {
			s.logger.Warn("push event without task payload", zap.String("kind", string(ev.Kind)))
			return
		}
		s.mu.Lock()
		t := *ev.Task
		s.insertLocked(t.ID, &t)
		s.mu.Unlock()
		s.notify()

	case domain.EventTaskDeleted:
		s.mu.Lock()
		_, existed := s.tasks[ev.TaskID]
		s.deleteLocked(ev.TaskID)
		s.mu.Unlock()
		if existed {
			s.notify()
		}

	default:
		s.logger.Warn("unknown push event", zap.String("kind", string(ev.Kind)))
	}
}

// ReplaceAll swaps the whole cache for the server's list. This is the
// correctness backstop after a reconnect, when missed events are unknowable.
func (s *Synchronizer) ReplaceAll(tasks []domain.Task) {
	s.mu.Lock()
	s.tasks = make(map[int64]*domain.Task, len(tasks))
	s.order = s.order[:0]
	for i := range tasks {
		t := tasks[i]
		if _, dup := s.tasks[t.ID]; dup {
			// server lists must not carry duplicate ids; keep the last one
			s.tasks[t.ID] = &t
			continue
		}
		s.insertLocked(t.ID, &t)
	}
	s.mu.Unlock()

	s.notify()
}

// Subscribe registers a change listener and returns its unsubscribe function.
// Listeners fire after every mutation, outside the cache lock.
func (s *Synchronizer) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	handle := uuid.NewString()

	s.mu.Lock()
	s.subs[handle] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, handle)
		s.mu.Unlock()
	}
}

func (s *Synchronizer) notify() {
	s.mu.RLock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// insertLocked upserts preserving the insertion position of existing ids.
func (s *Synchronizer) insertLocked(id int64, t *domain.Task) {
	if _, exists := s.tasks[id]; !exists {
		s.order = append(s.order, id)
	}
	s.tasks[id] = t
}

func (s *Synchronizer) deleteLocked(id int64) {
	if _, exists := s.tasks[id]; !exists {
		return
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
