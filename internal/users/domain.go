package users

import (
	"github.com/retriever-essentials/pantry-web/internal/token"
)

// Authority mirrors the backend's granted-authority wire shape.
type Authority struct {
	Authority string `json:"authority"`
}

// Account is a staff login as the backend reports it.
type Account struct {
	AppUserID   int64       `json:"appUserId"`
	Username    string      `json:"username"`
	Authorities []Authority `json:"authorities"`
	Enabled     bool        `json:"enabled"`
}

// Role picks the first recognized role off the authority list.
func (a Account) Role() (token.Role, bool) {
	for _, auth := range a.Authorities {
		if role, ok := token.ParseRole(auth.Authority); ok {
			return role, true
		}
	}
	return "", false
}

// RoleLabel renders the account's role for display, empty when unknown.
func (a Account) RoleLabel() string {
	role, ok := a.Role()
	if !ok {
		return ""
	}
	return string(role)
}

// NewAccount is the create payload the backend accepts.
type NewAccount struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserRole string `json:"userRole"`
}
