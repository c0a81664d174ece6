package token

import (
	"strings"
	"time"
)

// Role enumerates the staff roles carried by pantry session tokens.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAuthority Role = "AUTHORITY"
)

// wirePrefix is prepended to roles by the issuing backend.
const wirePrefix = "ROLE_"

// ParseRole normalizes a wire role string (ROLE_ADMIN, ROLE_AUTHORITY) into a Role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimPrefix(raw, wirePrefix)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleAuthority:
		return RoleAuthority, true
	}
	return "", false
}

// Wire returns the role as the issuing backend spells it.
func (r Role) Wire() string {
	return wirePrefix + string(r)
}

// Claims is the decoded payload of a pantry session token.
type Claims struct {
	Subject   string
	Role      Role
	AppUserID int64
	ExpiresAt time.Time
}

// Expired reports whether the claims are no longer valid at the given instant.
// A token whose expiry equals now is already expired.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
