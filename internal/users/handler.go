package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retriever-essentials/pantry-web/internal/backend"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

// Handler serves the staff account admin screens and the change-password
// screen for the signed-in account.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	store       *session.Store
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, store *session.Store, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		store:       store,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountAdmin registers the account maintenance routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Get("/", h.listAccounts)
	r.Get("/new", h.showAccountForm)
	r.Post("/new", h.handleAccountForm)
	r.Post("/{id}/enable", h.handleSetEnabled(true))
	r.Post("/{id}/disable", h.handleSetEnabled(false))
}

// MountAccount registers the signed-in account's own routes.
func (h *Handler) MountAccount(r chi.Router) {
	r.Get("/password", h.showPasswordForm)
	r.Post("/password", h.handlePasswordForm)
}

type accountListData struct {
	Accounts []Account
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/users.html", "Staff Accounts", accountListData{Accounts: accounts})
}

type accountFormData struct {
	Username string
	UserRole string
	Errors   []string
}

func (h *Handler) showAccountForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/user_form.html", "New Account", accountFormData{UserRole: "AUTHORITY"})
}

type accountForm struct {
	Username string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	UserRole string `validate:"required,oneof=ADMIN AUTHORITY"`
}

func (h *Handler) handleAccountForm(w http.ResponseWriter, r *http.Request) {
	form := accountForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		UserRole: r.PostFormValue("userRole"),
	}

	var problems []string
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fe.Field()+" is invalid")
			}
		}
	}

	if len(problems) == 0 {
		account := NewAccount{Username: form.Username, Password: form.Password, UserRole: form.UserRole}
		if _, err := h.service.Create(r.Context(), account); err != nil {
			if messages, ok := backend.ValidationMessages(err); ok {
				problems = messages
			} else if errors.Is(err, ErrWeakPassword) {
				problems = append(problems, "Password must be at least 6 characters")
			} else {
				h.renderBackendError(w, r, err)
				return
			}
		} else {
			h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Account created"})
			http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
			return
		}
	}

	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/user_form.html", "New Account", accountFormData{
		Username: form.Username,
		UserRole: form.UserRole,
		Errors:   problems,
	})
}

func (h *Handler) handleSetEnabled(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if err := h.service.SetEnabled(r.Context(), id, enabled); err != nil {
			h.renderBackendError(w, r, err)
			return
		}
		message := "Account disabled"
		if enabled {
			message = "Account enabled"
		}
		h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
	}
}

type passwordFormData struct {
	Errors []string
}

func (h *Handler) showPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/password_form.html", "Change Password", passwordFormData{})
}

func (h *Handler) handlePasswordForm(w http.ResponseWriter, r *http.Request) {
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")

	var problems []string
	if password != confirm {
		problems = append(problems, "Passwords do not match")
	}
	if len(problems) == 0 {
		if err := h.service.ChangePassword(r.Context(), password); err != nil {
			if errors.Is(err, ErrWeakPassword) {
				problems = append(problems, "Password must be at least 6 characters")
			} else if messages, ok := backend.ValidationMessages(err); ok {
				problems = messages
			} else {
				h.renderBackendError(w, r, err)
				return
			}
		} else {
			h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Password updated"})
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/password_form.html", "Change Password", passwordFormData{Errors: problems})
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
		h.logger.Error("render users page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("users backend call", slog.Any("error", err))
	h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "The pantry service is unavailable. Try again shortly."})
	w.WriteHeader(http.StatusBadGateway)
	h.render(w, r, "pages/error.html", "Unavailable", nil)
}
