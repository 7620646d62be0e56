package domain

import "time"

// User is an identity known to the backend. Read-only on the client.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	LoggedInAt time.Time `json:"logged_in_at,omitempty"`
}

// DisplayName renders the name used for the denormalized assignee field.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
