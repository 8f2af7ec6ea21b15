package models

import "github.com/golang-jwt/jwt/v5"

// SessionRole identifies which kind of account a session belongs to.
type SessionRole string

const (
	RoleNone    SessionRole = ""
	RoleTrainer SessionRole = "TRAINER"
	RoleStudent SessionRole = "STUDENT"
)

// SessionState is a caller-observable step of the login flow.
type SessionState string

const (
	StateAnonymous          SessionState = "anonymous"
	StateFirstAccessPending SessionState = "first_access_pending"
	StatePasswordPrompt     SessionState = "password_prompt"
	StateAuthenticated      SessionState = "authenticated"
)

// Session is held by the caller and passed into every session operation.
// The core keeps no session state of its own.
type Session struct {
	ID           string       `json:"id"`
	Role         SessionRole  `json:"role"`
	State        SessionState `json:"state"`
	TrainerLogin string       `json:"trainer_login,omitempty"`
	StudentID    string       `json:"student_id,omitempty"`
	StudentLogin string       `json:"student_login,omitempty"`
}

// Authenticated reports whether the session finished logging in.
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated
}

// SessionClaims is the signed token form of a Session.
type SessionClaims struct {
	Session Session `json:"session"`
	jwt.RegisteredClaims
}
