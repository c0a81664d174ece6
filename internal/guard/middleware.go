package guard

import (
	"log/slog"
	"net/http"

	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/token"
)

// Middleware wires the authorization policy into the HTTP router.
type Middleware struct {
	Store  *session.Store
	Logger *slog.Logger
}

// Require protects a route subtree with the given allowed roles. An empty
// role list means any authenticated, non-kiosk session may pass.
func (m Middleware) Require(roles ...token.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch decision := Authorize(m.Store.Snapshot(), roles...); decision {
			case Allow:
				next.ServeHTTP(w, r)
			case RedirectToLogin:
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case RedirectToUnauthorized:
				if m.Logger != nil {
					m.Logger.Warn("blocked navigation",
						slog.String("path", r.URL.Path),
						slog.String("decision", decision.String()))
				}
				http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
			}
		})
	}
}

// RequireAuthenticated protects a route subtree with the session-only
// policy: any signed-in identity passes, including one on a kiosk-flagged
// session. Used for the self-checkout disable endpoints.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AuthorizeSession(m.Store.Snapshot()) == RedirectToLogin {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
