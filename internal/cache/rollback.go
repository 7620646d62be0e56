package cache

import (
	"github.com/google/uuid"

	"github.com/taskflow/client/domain"
)

// RollbackToken is an opaque capture of the state one mutation replaced,
// sufficient to undo exactly that mutation. A nil prev snapshot means the
// entry did not exist before the mutation (an optimistic create), so rollback
// removes it. Tokens are single-use; Rollback consumes them.
type RollbackToken struct {
	id       string
	taskID   int64
	prev     *domain.Task
	valid    bool
	consumed bool
}

func newToken(taskID int64, prev *domain.Task) *RollbackToken {
	return &RollbackToken{
		id:     uuid.NewString(),
		taskID: taskID,
		prev:   prev,
		valid:  true,
	}
}

// emptyToken marks a no-op mutation; rolling it back does nothing.
func emptyToken() *RollbackToken {
	return &RollbackToken{}
}

// Empty reports whether the token captures no mutation.
func (t *RollbackToken) Empty() bool {
	return t == nil || !t.valid
}

// TaskID returns the id of the entry the token would restore.
func (t *RollbackToken) TaskID() int64 {
	if t == nil {
		return 0
	}
	return t.taskID
}
