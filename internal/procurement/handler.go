package procurement

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

// ItemSource lists catalog items for the purchase form.
type ItemSource interface {
	List(ctx context.Context) ([]catalog.Item, error)
}

// Handler serves the vendor and purchase order admin screens.
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

// MountVendors registers the vendor maintenance routes.
func (h *Handler) MountVendors(r chi.Router) {
	r.Get("/", h.listVendors)
	r.Get("/new", h.showVendorForm)
	r.Post("/new", h.handleVendorForm)
	r.Get("/{id}/edit", h.showVendorForm)
	r.Post("/{id}/edit", h.handleVendorForm)
	r.Post("/{id}/disable", h.handleVendorDisable)
}

// MountPurchases registers the purchase order routes.
func (h *Handler) MountPurchases(r chi.Router) {
	r.Get("/", h.listPurchases)
	r.Get("/new", h.showPurchaseForm)
	r.Post("/new", h.handlePurchaseForm)
	r.Get("/{id}", h.showPurchase)
	r.Post("/{id}/delete", h.handlePurchaseDelete)
	r.Post("/lines/{lineId}/delete", h.handleLineDelete)
}

type vendorListData struct {
	Vendors []Vendor
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.service.Vendors(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/vendors.html", "Vendors", vendorListData{Vendors: vendors})
}

type vendorFormData struct {
	Vendor Vendor
	Errors []string
}

func (h *Handler) showVendorForm(w http.ResponseWriter, r *http.Request) {
	var vendor Vendor
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		vendor, err = h.service.Vendor(r.Context(), id)
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			h.renderBackendError(w, r, err)
			return
		}
	}
	h.render(w, r, "pages/vendor_form.html", "Edit Vendor", vendorFormData{Vendor: vendor})
}

type vendorForm struct {
	VendorName   string `validate:"required,max=55"`
	PhoneNumber  string `validate:"omitempty,max=25"`
	ContactEmail string `validate:"omitempty,email"`
}

func (h *Handler) handleVendorForm(w http.ResponseWriter, r *http.Request) {
	form := vendorForm{
		VendorName:   strings.TrimSpace(r.PostFormValue("vendorName")),
		PhoneNumber:  strings.TrimSpace(r.PostFormValue("phoneNumber")),
		ContactEmail: strings.TrimSpace(r.PostFormValue("contactEmail")),
	}
	vendor := Vendor{
		VendorName:   form.VendorName,
		PhoneNumber:  form.PhoneNumber,
		ContactEmail: form.ContactEmail,
	}
	if raw := chi.URLParam(r, "id"); raw != "" {
		vendor.VendorID, _ = strconv.ParseInt(raw, 10, 64)
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
		if _, err := h.service.SaveVendor(r.Context(), vendor); err != nil {
			if messages, ok := backend.ValidationMessages(err); ok {
				problems = messages
			} else {
				h.renderBackendError(w, r, err)
				return
			}
		} else {
			h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Vendor saved"})
			http.Redirect(w, r, "/admin/vendors", http.StatusSeeOther)
			return
		}
	}

	w.WriteHeader(http.StatusBadRequest)
	h.render(w, r, "pages/vendor_form.html", "Edit Vendor", vendorFormData{Vendor: vendor, Errors: problems})
}

func (h *Handler) handleVendorDisable(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DisableVendor(r.Context(), id); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Vendor disabled"})
	http.Redirect(w, r, "/admin/vendors", http.StatusSeeOther)
}

type purchaseListData struct {
	Purchases []PurchaseOrder
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.Purchases(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/purchases.html", "Purchase Orders", purchaseListData{Purchases: orders})
}

type purchaseDetailData struct {
	Purchase PurchaseOrder
}

func (h *Handler) showPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	order, err := h.service.Purchase(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/purchase_detail.html", "Purchase Order", purchaseDetailData{Purchase: order})
}

type purchaseFormData struct {
	Vendors []Vendor
	Items   []catalog.Item
	Errors  []string
}

func (h *Handler) showPurchaseForm(w http.ResponseWriter, r *http.Request) {
	data, err := h.purchaseFormData(r.Context(), nil)
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/purchase_form.html", "New Purchase Order", data)
}

func (h *Handler) purchaseFormData(ctx context.Context, problems []string) (purchaseFormData, error) {
	vendors, err := h.service.Vendors(ctx)
	if err != nil {
		return purchaseFormData{}, err
	}
	items, err := h.items.List(ctx)
	if err != nil {
		return purchaseFormData{}, err
	}
	return purchaseFormData{Vendors: vendors, Items: items, Errors: problems}, nil
}

// handlePurchaseForm reads parallel itemId/quantity form slices into order
// lines, skipping rows without a quantity.
func (h *Handler) handlePurchaseForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	vendorID, _ := strconv.ParseInt(r.PostFormValue("vendorId"), 10, 64)

	itemIDs := r.PostForm["itemId"]
	quantities := r.PostForm["quantity"]
	var lines []PurchaseItem
	for i, raw := range itemIDs {
		if i >= len(quantities) {
			break
		}
		itemID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || itemID == 0 {
			continue
		}
		qty, _ := strconv.Atoi(quantities[i])
		if qty <= 0 {
			continue
		}
		lines = append(lines, PurchaseItem{ItemID: itemID, Quantity: qty})
	}

	snap := h.store.Snapshot()
	_, err := h.service.PlacePurchase(r.Context(), snap.Identity.UserID, vendorID, lines)
	switch {
	case err == nil:
		h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Purchase order placed"})
		http.Redirect(w, r, "/admin/purchases", http.StatusSeeOther)
		return
	case errors.Is(err, ErrNoLines):
		data, dataErr := h.purchaseFormData(r.Context(), []string{"Add at least one item to the order"})
		if dataErr != nil {
			h.renderBackendError(w, r, dataErr)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/purchase_form.html", "New Purchase Order", data)
		return
	default:
		if messages, ok := backend.ValidationMessages(err); ok {
			data, dataErr := h.purchaseFormData(r.Context(), messages)
			if dataErr != nil {
				h.renderBackendError(w, r, dataErr)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			h.render(w, r, "pages/purchase_form.html", "New Purchase Order", data)
			return
		}
		h.renderBackendError(w, r, err)
	}
}

func (h *Handler) handlePurchaseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeletePurchase(r.Context(), id); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Purchase order removed"})
	http.Redirect(w, r, "/admin/purchases", http.StatusSeeOther)
}

func (h *Handler) handleLineDelete(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineId"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.DeleteLine(r.Context(), lineID); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Line removed"})
	http.Redirect(w, r, "/admin/purchases", http.StatusSeeOther)
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
		h.logger.Error("render procurement page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("procurement backend call", slog.Any("error", err))
	h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "The pantry service is unavailable. Try again shortly."})
	w.WriteHeader(http.StatusBadGateway)
	h.render(w, r, "pages/error.html", "Unavailable", nil)
}
