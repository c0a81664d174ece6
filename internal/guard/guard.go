// Package guard decides whether a navigation to a protected view is
// permitted. The policy is a pure function of the session snapshot and the
// route's declared roles; redirect side effects live in the middleware.
package guard

import (
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/token"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToUnauthorized:
		return "redirect-to-unauthorized"
	}
	return "unknown"
}

// Authorize applies the route protection policy, first match wins:
//
//  1. no identity          -> RedirectToLogin
//  2. role not in required -> RedirectToUnauthorized
//  3. self-checkout active -> RedirectToUnauthorized
//  4. otherwise            -> Allow
//
// Rule 3 is evaluated after a successful role match and overrides it: an
// unattended kiosk must not expose admin screens no matter whose
// credentials switched it on. Authorize never fails.
func Authorize(snap session.Snapshot, required ...token.Role) Decision {
	if !snap.Authenticated {
		return RedirectToLogin
	}
	if len(required) > 0 && !hasRole(required, snap.Identity.Role) {
		return RedirectToUnauthorized
	}
	if snap.SelfCheckout {
		return RedirectToUnauthorized
	}
	return Allow
}

// AuthorizeSession checks only that an identity is present. The kiosk
// lockout rule is deliberately skipped: the self-checkout disable flow must
// stay reachable while the flag is on, or the only way out of kiosk mode
// would be destroying the session.
func AuthorizeSession(snap session.Snapshot) Decision {
	if !snap.Authenticated {
		return RedirectToLogin
	}
	return Allow
}

func hasRole(required []token.Role, role token.Role) bool {
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
