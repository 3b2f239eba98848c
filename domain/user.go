package domain

import "strings"

// User represents an account from the static user list. The list is part of
// the persisted snapshot and is read-only at runtime.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
	Password  string `json:"password"`
}

// DisplayName returns the name stamped on tickets the user authors.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session is the resolved identity of a caller, passed explicitly into
// every store operation instead of being read from ambient request state.
type Session struct {
	UserID int64
	Name   string
	Admin  bool
}
