package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/retriever-essentials/pantry-web/internal/backend"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

const itemsPerPage = 12

// Handler serves the storefront catalog pages and the admin item screens.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	store       *session.Store
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler.
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

// MountPublic registers the storefront catalog routes.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/shop", h.showGrid)
	r.Get("/category/{category}", h.showCategory)
	r.Get("/product/{id}", h.showProduct)
	r.Get("/search", h.showSearch)
}

// MountAdmin registers the item maintenance routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Get("/", h.listItems)
	r.Get("/new", h.showItemForm)
	r.Post("/new", h.handleItemForm)
	r.Get("/{id}/edit", h.showItemForm)
	r.Post("/{id}/edit", h.handleItemForm)
	r.Post("/{id}/delete", h.handleDelete)
}

type gridPageData struct {
	Items      []Item
	Categories []string
	Pagination shared.Pagination
}

func (h *Handler) showGrid(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, itemsPerPage, len(items))
	start, end := pagination.Slice()

	h.render(w, r, "pages/shop.html", "Shop", gridPageData{
		Items:      items[start:end],
		Categories: Categories,
		Pagination: pagination,
	})
}

type categoryPageData struct {
	Category   string
	Items      []Item
	Categories []string
}

func (h *Handler) showCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	items, err := h.service.ByCategory(r.Context(), category)
	if errors.Is(err, ErrUnknownCategory) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/category.html", category, categoryPageData{
		Category:   category,
		Items:      items,
		Categories: Categories,
	})
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/product.html", item.ItemName, item)
}

type searchPageData struct {
	Term  string
	Items []Item
}

func (h *Handler) showSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	items, err := h.service.Search(r.Context(), term)
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/search.html", "Search", searchPageData{Term: term, Items: items})
}

type itemListPageData struct {
	Items []Item
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/admin_items.html", "Items", itemListPageData{Items: items})
}

type itemForm struct {
	ItemName        string `validate:"required"`
	ItemDescription string
	NutritionFacts  string
	PicturePath     string
	Category        string  `validate:"required"`
	CurrentCount    int     `validate:"min=0"`
	ItemLimit       int     `validate:"min=1"`
	PricePerUnit    float64 `validate:"min=0"`
}

type itemFormPageData struct {
	Item       Item
	Categories []string
	Errors     []string
}

func (h *Handler) showItemForm(w http.ResponseWriter, r *http.Request) {
	var item Item
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		item, err = h.service.Get(r.Context(), id)
		if err != nil {
			h.renderBackendError(w, r, err)
			return
		}
	}
	h.render(w, r, "pages/admin_item_form.html", "Edit Item", itemFormPageData{
		Item:       item,
		Categories: Categories,
	})
}

func (h *Handler) handleItemForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := itemForm{
		ItemName:        r.PostFormValue("itemName"),
		ItemDescription: r.PostFormValue("itemDescription"),
		NutritionFacts:  r.PostFormValue("nutritionFacts"),
		PicturePath:     r.PostFormValue("picturePath"),
		Category:        r.PostFormValue("category"),
	}
	form.CurrentCount, _ = strconv.Atoi(r.PostFormValue("currentCount"))
	form.ItemLimit, _ = strconv.Atoi(r.PostFormValue("itemLimit"))
	form.PricePerUnit, _ = strconv.ParseFloat(r.PostFormValue("pricePerUnit"), 64)

	item := Item{
		ItemName:        form.ItemName,
		ItemDescription: form.ItemDescription,
		NutritionFacts:  form.NutritionFacts,
		PicturePath:     form.PicturePath,
		Category:        form.Category,
		CurrentCount:    form.CurrentCount,
		ItemLimit:       form.ItemLimit,
		PricePerUnit:    form.PricePerUnit,
	}
	if raw := chi.URLParam(r, "id"); raw != "" {
		item.ItemID, _ = strconv.ParseInt(raw, 10, 64)
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
		if _, err := h.service.Save(r.Context(), item); err != nil {
			if messages, ok := backend.ValidationMessages(err); ok {
				problems = messages
			} else {
				h.renderBackendError(w, r, err)
				return
			}
		} else {
			h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Item saved"})
			http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
			return
		}
	}

	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/admin_item_form.html", "Edit Item", itemFormPageData{
		Item:       item,
		Categories: Categories,
		Errors:     problems,
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
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Item removed"})
	http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
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
		h.logger.Error("render catalog page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("catalog backend call", slog.Any("error", err))
	h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "The pantry service is unavailable. Try again shortly."})
	w.WriteHeader(http.StatusBadGateway)
	h.render(w, r, "pages/error.html", "Unavailable", nil)
}
