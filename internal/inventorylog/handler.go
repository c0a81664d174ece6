package inventorylog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retriever-essentials/pantry-web/internal/backend"
	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

// ItemSource lists catalog items for the adjustment form.
type ItemSource interface {
	List(ctx context.Context) ([]catalog.Item, error)
}

// Handler serves the inventory log screens.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	items       ItemSource
	templates   *view.Engine
	store       *session.Store
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, items ItemSource, templates *view.Engine, store *session.Store, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		items:       items,
		templates:   templates,
		store:       store,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// Mount registers the inventory log routes.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.listEntries)
	r.Get("/new", h.showEntryForm)
	r.Post("/new", h.handleEntryForm)
	r.Post("/{id}/delete", h.handleDelete)
}

type entryListData struct {
	Entries     []Entry
	ItemFilter  string
	EmailFilter string
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	itemName := strings.TrimSpace(r.URL.Query().Get("item"))
	email := strings.TrimSpace(r.URL.Query().Get("authority"))

	entries, err := h.service.List(r.Context(), itemName, email)
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/inventory_logs.html", "Inventory Log", entryListData{
		Entries:     entries,
		ItemFilter:  itemName,
		EmailFilter: email,
	})
}

type entryFormData struct {
	Items  []catalog.Item
	Entry  Entry
	Errors []string
}

func (h *Handler) showEntryForm(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/inventory_log_form.html", "Adjust Inventory", entryFormData{Items: items})
}

type entryForm struct {
	ItemID         int64  `validate:"required,gt=0"`
	QuantityChange int    `validate:"required"`
	Reason         string `validate:"required"`
}

func entryFormProblem(fe validator.FieldError) string {
	switch fe.Field() {
	case "ItemID":
		return "Choose an item"
	case "QuantityChange":
		return "Quantity change must be non-zero"
	case "Reason":
		return "A reason is required"
	}
	return fe.Field() + " is invalid"
}

func (h *Handler) handleEntryForm(w http.ResponseWriter, r *http.Request) {
	var form entryForm
	form.ItemID, _ = strconv.ParseInt(r.PostFormValue("itemId"), 10, 64)
	form.QuantityChange, _ = strconv.Atoi(r.PostFormValue("quantityChange"))
	form.Reason = r.PostFormValue("reason")

	var problems []string
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, entryFormProblem(fe))
			}
		}
	}

	if len(problems) == 0 {
		snap := h.store.Snapshot()
		_, err := h.service.Record(r.Context(), snap.Identity.UserID, form.ItemID, form.QuantityChange, form.Reason)
		switch {
		case err == nil:
			h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Adjustment recorded"})
			http.Redirect(w, r, "/admin/inventory-logs", http.StatusSeeOther)
			return
		case errors.Is(err, ErrZeroChange):
			problems = append(problems, "Quantity change must be non-zero")
		case errors.Is(err, ErrMissingReason):
			problems = append(problems, "A reason is required")
		default:
			if messages, ok := backend.ValidationMessages(err); ok {
				problems = messages
			} else {
				h.renderBackendError(w, r, err)
				return
			}
		}
	}

	items, itemsErr := h.items.List(r.Context())
	if itemsErr != nil {
		h.renderBackendError(w, r, itemsErr)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/inventory_log_form.html", "Adjust Inventory", entryFormData{
		Items:  items,
		Entry:  Entry{ItemID: form.ItemID, QuantityChange: form.QuantityChange, Reason: form.Reason},
		Errors: problems,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Entry removed"})
	http.Redirect(w, r, "/admin/inventory-logs", http.StatusSeeOther)
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
		h.logger.Error("render inventory log page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("inventory log backend call", slog.Any("error", err))
	h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "The pantry service is unavailable. Try again shortly."})
	w.WriteHeader(http.StatusBadGateway)
	h.render(w, r, "pages/error.html", "Unavailable", nil)
}
