package domain

// EventKind names the realtime notifications pushed by the backend.
type EventKind string

const (
	EventTaskCreated EventKind = "task_created"
	EventTaskUpdated EventKind = "task_updated"
	EventTaskDeleted EventKind = "task_deleted"
)

// TaskEvent is one realtime push. Created/Updated carry the full task,
// Deleted carries only the id.
type TaskEvent struct {
	Kind   EventKind
	Task   *Task
	TaskID int64
}
