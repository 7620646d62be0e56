package bolt

import (
	"context"
	"testing"

	"github.com/taskflow/client/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	repo := NewSnapshotRepository(openTestStore(t))
	ctx := context.Background()

	saved := []domain.Task{
		{ID: 1, Title: "A", Priority: domain.PriorityHigh, Status: domain.StatusToDo, CreatedBy: 7},
		{ID: 2, Title: "B", Priority: domain.PriorityLow, Status: domain.StatusDone, AssignedTo: 7},
	}
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("order lost: %+v", got)
	}
	if got[1].Status != domain.StatusDone {
		t.Fatalf("fields lost: %+v", got[1])
	}
}

func TestSnapshotLoadWhenEmpty(t *testing.T) {
	repo := NewSnapshotRepository(openTestStore(t))

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no snapshot, got %+v", got)
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	repo := NewSnapshotRepository(openTestStore(t))
	ctx := context.Background()

	if err := repo.Save(ctx, []domain.Task{{ID: 1, Title: "A"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, []domain.Task{{ID: 2, Title: "B"}}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("old snapshot survived: %+v", got)
	}
}

func TestSnapshotClear(t *testing.T) {
	repo := NewSnapshotRepository(openTestStore(t))
	ctx := context.Background()

	if err := repo.Save(ctx, []domain.Task{{ID: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("snapshot survived clear: %+v", got)
	}
}
