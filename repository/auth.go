package repository

import "context"

// Credentials is the sign-in payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpInput is the account-creation payload.
type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is the backend's answer to sign-in/sign-up.
type AuthResult struct {
	UserID  int64  `json:"user_id"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// AuthRepository covers the unauthenticated auth endpoints.
type AuthRepository interface {
	SignIn(ctx context.Context, creds Credentials) (*AuthResult, error)
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
}
