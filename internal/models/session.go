package models

import "time"

// SessionState is the lifecycle position of a session
type SessionState string

const (
	SessionLoading         SessionState = "loading"
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticated   SessionState = "authenticated"
)

// Role names a capability granted to a user
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the identity returned by the external provider
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the caller's view of their authentication state
type Session struct {
	State     SessionState `json:"state"`
	User      *User        `json:"user,omitempty"`
	Roles     []Role       `json:"roles,omitempty"`
	IsAdmin   bool         `json:"isAdmin"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Anonymous returns the unauthenticated session
func Anonymous() *Session {
	return &Session{State: SessionUnauthenticated}
}

// HasRole reports whether the session carries role
func (s *Session) HasRole(role Role) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
