package domain

import "time"

// SubTask is a proposed child task inside an analysis suggestion.
type SubTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// Suggestion is one actionable recommendation from a task analysis.
type Suggestion struct {
	ID             int64     `json:"id"`
	TaskID         int64     `json:"task_id"`
	UserID         int64     `json:"user_id"`
	SuggestionText string    `json:"suggestion_text"`
	SubTasks       []SubTask `json:"sub_tasks"`
	Accepted       bool      `json:"accepted"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// TaskAnalysis is the AI-generated breakdown of a task. Ephemeral: produced
// per request and never cached.
type TaskAnalysis struct {
	TaskID      int64        `json:"task_id"`
	Analysis    string       `json:"analysis"`
	Suggestions []Suggestion `json:"suggestions"`
}

// AnalyzeRequest is the free-form context sent with an analysis request.
type AnalyzeRequest struct {
	Description string `json:"description,omitempty"`
	Context     string `json:"context,omitempty"`
}
