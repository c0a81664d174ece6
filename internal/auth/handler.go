package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/retriever-essentials/pantry-web/internal/authapi"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

// AuthPort is the slice of the auth backend the handler needs.
type AuthPort interface {
	Login(ctx context.Context, email, password string) (authapi.Result, error)
	Refresh(ctx context.Context, existingToken string) (authapi.Result, error)
	Reauthenticate(ctx context.Context, email, password string) (bool, error)
}

// Handler serves the sign-in screens and the dashboard session controls.
type Handler struct {
	logger      *slog.Logger
	client      AuthPort
	templates   *view.Engine
	store       *session.Store
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

func NewHandler(logger *slog.Logger, client AuthPort, templates *view.Engine, store *session.Store, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		client:      client,
		templates:   templates,
		store:       store,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountPublic registers the routes reachable without a session. Login gets a
// tighter per-IP limit than the global middleware to slow credential guessing.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.With(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
		Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/unauthorized", h.showUnauthorized)
}

// MountDashboard registers the signed-in session controls. The router wraps
// these with the role guard.
func (h *Handler) MountDashboard(r chi.Router) {
	r.Get("/", h.showDashboard)
	r.Post("/session/refresh", h.handleRefresh)
	r.Post("/self-checkout/enable", h.handleEnable)
}

// MountSelfCheckoutDisable registers the two-step disable flow. The router
// wraps these with the authentication-only guard, not the role guard: the
// kiosk lockout blocks every role-guarded route while the flag is on, so
// mounting them there would make the flag impossible to clear.
func (h *Handler) MountSelfCheckoutDisable(r chi.Router) {
	r.Post("/self-checkout/disable", h.handleDisableRequest)
	r.Post("/self-checkout/disable/confirm", h.handleDisableConfirm)
}

type loginPageData struct {
	Email string
	Error string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.store.Snapshot().Authenticated {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/login.html", "Sign In", loginPageData{})
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/login.html", "Sign In", loginPageData{
			Email: form.Email,
			Error: "Enter a valid email address and your password.",
		})
		return
	}

	result, err := h.client.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.renderLoginError(w, r, form.Email, err)
		return
	}
	if err := h.store.Establish(r.Context(), result.Token); err != nil {
		h.logger.Error("establish session", slog.Any("error", err))
		h.renderLoginError(w, r, form.Email, err)
		return
	}

	snap := h.store.Snapshot()
	h.logger.Info("signed in",
		slog.String("email", snap.Identity.Email),
		slog.String("role", string(snap.Identity.Role)),
	)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, email string, err error) {
	message := "Sign-in is unavailable right now. Try again shortly."
	var apiErr *authapi.Error
	switch {
	case errors.As(err, &apiErr):
		message = "Email or password is incorrect."
	case errors.Is(err, session.ErrExpiredToken):
		message = "The sign-in expired before it could be used. Try again."
	}
	w.WriteHeader(http.StatusUnauthorized)
	h.render(w, r, "pages/login.html", "Sign In", loginPageData{Email: email, Error: message})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(r.Context()); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) showUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	h.render(w, r, "pages/unauthorized.html", "Not Allowed", nil)
}

type dashboardPageData struct {
	SelfCheckout   bool
	PendingDisable bool
	DisableError   string
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	h.render(w, r, "pages/dashboard.html", "Dashboard", dashboardPageData{
		SelfCheckout: snap.SelfCheckout,
	})
}

// handleRefresh swaps the held token for a fresh one. A failed refresh means
// the backend no longer honors the session, so it is torn down.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.client.Refresh(r.Context(), h.store.Token())
	if err != nil {
		h.logger.Warn("token refresh failed", slog.Any("error", err))
		if err := h.store.Logout(r.Context()); err != nil {
			h.logger.Error("logout after failed refresh", slog.Any("error", err))
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := h.store.Establish(r.Context(), result.Token); err != nil {
		h.logger.Error("adopt refreshed token", slog.Any("error", err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Session extended"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) handleEnable(w http.ResponseWriter, r *http.Request) {
	if err := h.store.EnableSelfCheckout(r.Context()); err != nil {
		h.logger.Error("enable self-checkout", slog.Any("error", err))
		h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "Could not enable self-checkout"})
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Self-checkout is on. Staff pages are locked until it is turned off."})
	http.Redirect(w, r, "/shop", http.StatusSeeOther)
}

func (h *Handler) handleDisableRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RequestDisableSelfCheckout(); err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/dashboard.html", "Dashboard", dashboardPageData{
		SelfCheckout:   true,
		PendingDisable: true,
	})
}

func (h *Handler) handleDisableConfirm(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	password := r.PostFormValue("password")

	ok, err := h.client.Reauthenticate(r.Context(), snap.Identity.Email, password)
	if err != nil {
		h.logger.Error("re-authenticate", slog.Any("error", err))
		ok = false
	}
	if err := h.store.ConfirmDisableSelfCheckout(r.Context(), ok); err != nil {
		message := "Could not turn off self-checkout."
		if errors.Is(err, shared.ErrInvalidCredentials) {
			message = "Password did not match. Self-checkout stays on."
		}
		w.WriteHeader(http.StatusUnauthorized)
		h.render(w, r, "pages/dashboard.html", "Dashboard", dashboardPageData{
			SelfCheckout: true,
			DisableError: message,
		})
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Self-checkout is off"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	csrfToken, _ := h.csrfManager.EnsureToken(h.store)
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       h.store.PopFlash(),
		CurrentPath: r.URL.Path,
		Session:     h.store.Snapshot(),
		Data:        data,
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render auth page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
