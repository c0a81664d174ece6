package cart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/observability"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

// scanKey is the session value that remembers the student swiped at the kiosk.
const scanKey = "scannedStudentId"

// visitKey holds the visit ID minted when the student scans in, so the scan
// and the checkout submission share one correlation ID in the logs.
const visitKey = "kioskVisitId"

// ItemSource resolves the item being added to the cart.
type ItemSource interface {
	Get(ctx context.Context, id int64) (catalog.Item, error)
}

// Handler serves the kiosk scan, cart and checkout screens.
type Handler struct {
	logger      *slog.Logger
	cart        *Cart
	service     *Service
	items       ItemSource
	templates   *view.Engine
	store       *session.Store
	csrfManager *shared.CSRFManager
	metrics     *observability.Metrics
}

func NewHandler(logger *slog.Logger, cart *Cart, service *Service, items ItemSource, templates *view.Engine, store *session.Store, csrf *shared.CSRFManager, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:      logger,
		cart:        cart,
		service:     service,
		items:       items,
		templates:   templates,
		store:       store,
		csrfManager: csrf,
		metrics:     metrics,
	}
}

// Mount registers the cart and checkout routes.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/scan", h.showScan)
	r.Post("/scan", h.handleScan)
	r.Get("/cart", h.showCart)
	r.Post("/cart/add/{id}", h.handleAdd)
	r.Post("/cart/update/{id}", h.handleUpdate)
	r.Post("/cart/remove/{id}", h.handleRemove)
	r.Post("/cart/clear", h.handleClear)
	r.Get("/checkout", h.showCheckout)
	r.Post("/checkout", h.handleCheckout)
}

type scanPageData struct {
	StudentID string
	Error     string
}

func (h *Handler) showScan(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/scan.html", "Scan Student ID", scanPageData{
		StudentID: h.store.Value(scanKey),
	})
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(strings.TrimSpace(r.PostFormValue("studentId")))
	if !ValidStudentID(id) {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/scan.html", "Scan Student ID", scanPageData{
			StudentID: id,
			Error:     "Student IDs look like AB12345.",
		})
		return
	}
	visitID := uuid.NewString()
	h.store.SetValue(scanKey, id)
	h.store.SetValue(visitKey, visitID)
	h.logger.Info("student scanned in",
		slog.String("visit_id", visitID),
		slog.String("student_id", id),
	)
	http.Redirect(w, r, "/shop", http.StatusSeeOther)
}

type cartPageData struct {
	Lines     []Line
	Count     int
	StudentID string
}

func (h *Handler) showCart(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/cart.html", "Cart", cartPageData{
		Lines:     h.cart.Lines(),
		Count:     h.cart.Count(),
		StudentID: h.store.Value(scanKey),
	})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	item, err := h.items.Get(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	if !item.InStock() {
		h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: item.ItemName + " is out of stock"})
		http.Redirect(w, r, redirectTarget(r, "/shop"), http.StatusSeeOther)
		return
	}
	h.cart.Add(item)
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: item.ItemName + " added to cart"})
	http.Redirect(w, r, redirectTarget(r, "/shop"), http.StatusSeeOther)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	qty, _ := strconv.Atoi(r.PostFormValue("quantity"))
	h.cart.SetQuantity(id, qty)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.cart.Remove(id)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

type checkoutPageData struct {
	Lines     []Line
	Count     int
	StudentID string
	Error     string
}

func (h *Handler) showCheckout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/checkout.html", "Checkout", checkoutPageData{
		Lines:     h.cart.Lines(),
		Count:     h.cart.Count(),
		StudentID: h.store.Value(scanKey),
	})
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	studentID := strings.ToUpper(strings.TrimSpace(r.PostFormValue("studentId")))
	if studentID == "" {
		studentID = h.store.Value(scanKey)
	}

	snap := h.store.Snapshot()
	order, err := h.service.Submit(r.Context(), studentID, snap)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotAuthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case errors.Is(err, ErrInvalidStudentID), errors.Is(err, ErrEmptyCart):
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/checkout.html", "Checkout", checkoutPageData{
			Lines:     h.cart.Lines(),
			Count:     h.cart.Count(),
			StudentID: studentID,
			Error:     checkoutErrorMessage(err),
		})
		return
	default:
		h.renderBackendError(w, r, err)
		return
	}

	// Staffed checkouts have no scan step, so the visit ID is minted here.
	visitID := h.store.Value(visitKey)
	if visitID == "" {
		visitID = uuid.NewString()
	}

	h.metrics.RecordCheckout(snap.SelfCheckout)
	h.logger.Info("checkout submitted",
		slog.String("visit_id", visitID),
		slog.Int64("order_id", order.CheckoutOrderID),
		slog.String("student_id", studentID),
		slog.Bool("self_checkout", snap.SelfCheckout),
	)
	h.store.SetValue(scanKey, "")
	h.store.SetValue(visitKey, "")
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Checkout complete. Thanks for visiting!"})
	http.Redirect(w, r, "/shop", http.StatusSeeOther)
}

func checkoutErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStudentID):
		return "Student IDs look like AB12345."
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty."
	default:
		return "Checkout failed."
	}
}

// redirectTarget keeps the shopper on the page they added from.
func redirectTarget(r *http.Request, fallback string) string {
	ref := r.PostFormValue("return")
	if ref == "" || !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return fallback
	}
	return ref
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
		h.logger.Error("render cart page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("cart backend call", slog.Any("error", err))
	h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "The pantry service is unavailable. Try again shortly."})
	w.WriteHeader(http.StatusBadGateway)
	h.render(w, r, "pages/error.html", "Unavailable", nil)
}
