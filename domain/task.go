package domain

import "time"

// Priority is the server-side priority scale.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Status is the server-side workflow state.
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Task represents a task as owned by the backend. IDs are server-assigned;
// a negative ID marks a client-local entry awaiting server confirmation.
type Task struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       Priority  `json:"priority"`
	Status         Status    `json:"status"`
	AssignedTo     int64     `json:"assigned_to"`
	AssignedToName string    `json:"assigned_to_name"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsTemporary reports whether the task carries a client-generated id.
func (t *Task) IsTemporary() bool {
	return t != nil && t.ID < 0
}

func (t *Task) IsDone() bool {
	return t != nil && t.Status == StatusDone
}

// VisibleTo reports whether the task belongs to the given user's view:
// created by them or assigned to them.
func (t *Task) VisibleTo(userID int64) bool {
	return t != nil && (t.CreatedBy == userID || t.AssignedTo == userID)
}

// TaskPatch is a partial update. Nil fields are left untouched on merge.
type TaskPatch struct {
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
	Status         *Status   `json:"status,omitempty"`
	AssignedTo     *int64    `json:"assigned_to,omitempty"`
	AssignedToName *string   `json:"assigned_to_name,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.AssignedTo == nil && p.AssignedToName == nil
}

// ApplyTo shallow-merges the patch into the task.
func (p TaskPatch) ApplyTo(t *Task) {
	if t == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.AssignedToName != nil {
		t.AssignedToName = *p.AssignedToName
	}
}

// CreateTaskInput carries the client-supplied fields of a new task.
type CreateTaskInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       Priority `json:"priority"`
	Status         Status   `json:"status"`
	AssignedTo     int64    `json:"assigned_to"`
	AssignedToName string   `json:"assigned_to_name"`
}

// Validate enforces the invariants the backend would reject anyway.
func (in CreateTaskInput) Validate() error {
	if in.Title == "" {
		return NewError(ErrCodeInvalid, "task title must not be empty")
	}
	if !ValidPriority(in.Priority) {
		return NewError(ErrCodeInvalid, "unknown priority "+string(in.Priority))
	}
	if !ValidStatus(in.Status) {
		return NewError(ErrCodeInvalid, "unknown status "+string(in.Status))
	}
	return nil
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}
