package cache

import (
	"reflect"
	"testing"
	"time"

	"github.com/taskflow/client/domain"
)

// helper to create a minimal task with the given id, title, and status.
func makeTask(id int64, title string, status domain.Status) domain.Task {
	return domain.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		Priority:  domain.PriorityMedium,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func seed(s *Synchronizer, tasks ...domain.Task) {
	s.ReplaceAll(tasks)
}

// ---------------------------------------------------------------------------
// List / insertion order
// ---------------------------------------------------------------------------

func TestListInsertionOrder(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(3, "c", domain.StatusToDo), makeTask(1, "a", domain.StatusToDo), makeTask(2, "b", domain.StatusToDo))

	all := s.List(nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	if all[0].ID != 3 || all[1].ID != 1 || all[2].ID != 2 {
		t.Fatalf("unexpected order: %d, %d, %d", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestListPredicate(t *testing.T) {
	s := New(nil)
	t1 := makeTask(1, "mine", domain.StatusToDo)
	t1.CreatedBy = 7
	t2 := makeTask(2, "theirs", domain.StatusToDo)
	t2.CreatedBy = 8
	seed(s, t1, t2)

	mine := s.List(func(task domain.Task) bool { return task.VisibleTo(7) })
	if len(mine) != 1 || mine[0].ID != 1 {
		t.Fatalf("expected only task 1, got %v", mine)
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "a", domain.StatusToDo))

	got := s.List(nil)
	got[0].Title = "mutated"

	fresh, _ := s.Get(1)
	if fresh.Title != "a" {
		t.Fatal("List must return copies, cache entry was mutated")
	}
}

// ---------------------------------------------------------------------------
// Optimistic patch + rollback
// ---------------------------------------------------------------------------

func TestApplyOptimisticAndRollback(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "A", domain.StatusToDo))

	done := domain.StatusDone
	token := s.ApplyOptimistic(1, domain.TaskPatch{Status: &done})

	got, _ := s.Get(1)
	if got.Status != domain.StatusDone {
		t.Fatalf("expected optimistic Done, got %s", got.Status)
	}

	s.Rollback(token)
	got, _ = s.Get(1)
	if got.Status != domain.StatusToDo {
		t.Fatalf("expected ToDo after rollback, got %s", got.Status)
	}
}

func TestRollbackRestoresExactSnapshot(t *testing.T) {
	s := New(nil)
	original := makeTask(1, "A", domain.StatusToDo)
	original.Description = "desc"
	original.AssignedTo = 9
	original.AssignedToName = "Bea Kristinsen"
	seed(s, original)

	title := "edited"
	done := domain.StatusDone
	token := s.ApplyOptimistic(1, domain.TaskPatch{Title: &title, Status: &done})
	s.Rollback(token)

	got, _ := s.Get(1)
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("rollback not byte-for-byte: got %+v want %+v", got, original)
	}
}

func TestRollbackIsIdempotent(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "A", domain.StatusToDo))

	done := domain.StatusDone
	token := s.ApplyOptimistic(1, domain.TaskPatch{Status: &done})
	s.Rollback(token)

	// a later write must survive a second rollback of the same token
	progress := domain.StatusInProgress
	s.ApplyOptimistic(1, domain.TaskPatch{Status: &progress})
	s.Rollback(token)

	got, _ := s.Get(1)
	if got.Status != domain.StatusInProgress {
		t.Fatalf("second rollback must be a no-op, got %s", got.Status)
	}
}

func TestApplyOptimisticMissingTaskIsNoop(t *testing.T) {
	s := New(nil)

	done := domain.StatusDone
	token := s.ApplyOptimistic(42, domain.TaskPatch{Status: &done})
	if !token.Empty() {
		t.Fatal("expected empty token for uncached task")
	}
	if s.Len() != 0 {
		t.Fatalf("cache must stay empty, has %d", s.Len())
	}
	s.Rollback(token) // must not panic or insert anything
	if s.Len() != 0 {
		t.Fatal("rollback of empty token changed the cache")
	}
}

// ---------------------------------------------------------------------------
// Optimistic create + confirm
// ---------------------------------------------------------------------------

func TestOptimisticCreateConfirm(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "A", domain.StatusToDo))

	s.ApplyOptimisticCreate(-1, makeTask(-1, "B", domain.StatusToDo))
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries after optimistic create, got %d", s.Len())
	}

	s.ConfirmCreate(-1, makeTask(42, "B", domain.StatusToDo))
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries after confirm, got %d", s.Len())
	}
	if _, ok := s.Get(-1); ok {
		t.Fatal("temp id must be gone after confirm")
	}
	if _, ok := s.Get(42); !ok {
		t.Fatal("server id must be present after confirm")
	}
}

func TestOptimisticCreateRollback(t *testing.T) {
	s := New(nil)

	token := s.ApplyOptimisticCreate(-1, makeTask(-1, "B", domain.StatusToDo))
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	s.Rollback(token)
	if s.Len() != 0 {
		t.Fatalf("rollback of create must remove the entry, got %d", s.Len())
	}
}

func TestConfirmCreateWithVanishedTempID(t *testing.T) {
	s := New(nil)
	s.ApplyOptimisticCreate(-1, makeTask(-1, "B", domain.StatusToDo))

	// concurrent realtime delete removed the temp entry
	s.MergePush(domain.TaskEvent{Kind: domain.EventTaskDeleted, TaskID: -1})

	s.ConfirmCreate(-1, makeTask(42, "B", domain.StatusToDo))
	if _, ok := s.Get(42); !ok {
		t.Fatal("server record must not be lost when temp id is absent")
	}
	if _, ok := s.Get(-1); ok {
		t.Fatal("temp id must stay absent")
	}
	if s.Len() != 1 {
		t.Fatalf("expected exactly 1 entry, got %d", s.Len())
	}
}

// ---------------------------------------------------------------------------
// Push merge
// ---------------------------------------------------------------------------

func TestMergePushDeleteOfAbsentIsNoop(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "A", domain.StatusToDo))

	s.MergePush(domain.TaskEvent{Kind: domain.EventTaskDeleted, TaskID: 99})
	if s.Len() != 1 {
		t.Fatalf("cache size must be unchanged, got %d", s.Len())
	}
}

func TestMergePushLastWriteWins(t *testing.T) {
	s := New(nil)

	first := makeTask(5, "first", domain.StatusToDo)
	second := makeTask(5, "second", domain.StatusInProgress)
	s.MergePush(domain.TaskEvent{Kind: domain.EventTaskUpdated, Task: &first})
	s.MergePush(domain.TaskEvent{Kind: domain.EventTaskUpdated, Task: &second})

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	got, _ := s.Get(5)
	if got.Title != "second" || got.Status != domain.StatusInProgress {
		t.Fatalf("last write must win, got %+v", got)
	}
}

func TestMergePushUpdateOfAbsentInserts(t *testing.T) {
	s := New(nil)

	task := makeTask(7, "pushed", domain.StatusToDo)
	s.MergePush(domain.TaskEvent{Kind: domain.EventTaskUpdated, Task: &task})
	if _, ok := s.Get(7); !ok {
		t.Fatal("update-of-absent must insert")
	}
}

func TestMergePushDeleteRemovesWithoutLocalAction(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(7, "A", domain.StatusToDo), makeTask(8, "B", domain.StatusToDo))

	s.MergePush(domain.TaskEvent{Kind: domain.EventTaskDeleted, TaskID: 7})

	if _, ok := s.Get(7); ok {
		t.Fatal("task 7 must be gone after push delete")
	}
	if _, ok := s.Get(8); !ok {
		t.Fatal("unrelated task must survive")
	}
}

// ---------------------------------------------------------------------------
// Remove + delete rollback
// ---------------------------------------------------------------------------

func TestRemoveAndRollback(t *testing.T) {
	s := New(nil)
	original := makeTask(1, "A", domain.StatusToDo)
	seed(s, original)

	token := s.Remove(1)
	if s.Len() != 0 {
		t.Fatalf("expected empty cache after remove, got %d", s.Len())
	}

	s.Rollback(token)
	got, ok := s.Get(1)
	if !ok {
		t.Fatal("rollback must reinsert the removed entry")
	}
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("reinserted entry differs: got %+v want %+v", got, original)
	}
}

func TestRemoveAbsentReturnsEmptyToken(t *testing.T) {
	s := New(nil)
	token := s.Remove(5)
	if !token.Empty() {
		t.Fatal("expected empty token for absent id")
	}
}

// ---------------------------------------------------------------------------
// Reconcile / ReplaceAll / Subscribe
// ---------------------------------------------------------------------------

func TestReconcileMutationOverwrites(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "optimistic", domain.StatusToDo))

	server := makeTask(1, "authoritative", domain.StatusInProgress)
	s.ReconcileMutation(1, server)

	got, _ := s.Get(1)
	if got.Title != "authoritative" {
		t.Fatalf("expected server state, got %+v", got)
	}
}

func TestReplaceAll(t *testing.T) {
	s := New(nil)
	seed(s, makeTask(1, "old", domain.StatusToDo))

	s.ReplaceAll([]domain.Task{
		makeTask(10, "x", domain.StatusToDo),
		makeTask(11, "y", domain.StatusDone),
	})

	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Fatal("stale entry survived ReplaceAll")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := New(nil)

	var fired int
	unsubscribe := s.Subscribe(func() { fired++ })

	seed(s, makeTask(1, "a", domain.StatusToDo))
	if fired != 1 {
		t.Fatalf("expected 1 notification, got %d", fired)
	}

	unsubscribe()
	seed(s, makeTask(2, "b", domain.StatusToDo))
	if fired != 1 {
		t.Fatalf("listener fired after unsubscribe: %d", fired)
	}
}
