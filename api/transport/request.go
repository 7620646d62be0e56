package transport

import "github.com/taskflow/client/domain"

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TaskCreateRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Priority       domain.Priority `json:"priority"`
	Status         domain.Status   `json:"status"`
	AssignedTo     int64           `json:"assigned_to"`
	AssignedToName string          `json:"assigned_to_name"`
}

// TaskUpdateRequest mirrors domain.TaskPatch: absent fields stay untouched.
type TaskUpdateRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Priority       *domain.Priority `json:"priority"`
	Status         *domain.Status   `json:"status"`
	AssignedTo     *int64           `json:"assigned_to"`
	AssignedToName *string          `json:"assigned_to_name"`
}

// Patch converts the request into the domain patch.
func (r TaskUpdateRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:          r.Title,
		Description:    r.Description,
		Priority:       r.Priority,
		Status:         r.Status,
		AssignedTo:     r.AssignedTo,
		AssignedToName: r.AssignedToName,
	}
}

type AnalyzeTaskRequest struct {
	Description string `json:"description"`
	Context     string `json:"context"`
}

type AcceptSuggestionRequest struct {
	Suggestion domain.Suggestion `json:"suggestion"`
}
