package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Session holds the bearer token plus the signed-in identity. It is owned by
// the session store; every other component reads it, none may cache the token.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ExpiresAt extracts the exp claim from the bearer token. The client does not
// hold the signing secret, so the parse is unverified; the backend remains the
// authority and will reject a forged token anyway. A zero time means the token
// carries no expiry.
func (s *Session) ExpiresAt() time.Time {
	if s == nil || s.Token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(exp), 0)
}

// IsExpired reports whether the token expiry has passed at the reference time.
func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil || s.Token == "" {
		return true
	}
	exp := s.ExpiresAt()
	if exp.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !exp.After(reference)
}
