package checkouts

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/retriever-essentials/pantry-web/internal/backend"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/stats/svg"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

// Handler serves the checkout history and traffic stats screens.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	store       *session.Store
	csrfManager *shared.CSRFManager
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, store *session.Store, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		store:       store,
		csrfManager: csrf,
	}
}

// MountAdmin registers the checkout history maintenance routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Get("/{id}", h.showOrder)
	r.Post("/{id}/edit", h.handleOrderEdit)
	r.Post("/{id}/delete", h.handleOrderDelete)
	r.Post("/lines/{lineId}/edit", h.handleLineEdit)
	r.Post("/lines/{lineId}/delete", h.handleLineDelete)
}

// MountStats registers the traffic and popularity pages.
func (h *Handler) MountStats(r chi.Router) {
	r.Get("/popular", h.showPopular)
	r.Get("/busy-times", h.showBusyTimes)
}

type orderListData struct {
	Orders []CheckoutOrder
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.History(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/checkout_orders.html", "Checkout History", orderListData{Orders: orders})
}

type orderDetailData struct {
	Order  CheckoutOrder
	Errors []string
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	order, err := h.service.Order(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/checkout_order.html", "Checkout Order", orderDetailData{Order: order})
}

func (h *Handler) handleOrderEdit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	order, err := h.service.Order(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}

	order.StudentID = strings.ToUpper(strings.TrimSpace(r.PostFormValue("studentId")))
	order.SelfCheckout = r.PostFormValue("selfCheckout") == "on"

	if err := h.service.Update(r.Context(), order); err != nil {
		if messages, ok := backend.ValidationMessages(err); ok {
			w.WriteHeader(http.StatusBadRequest)
			h.render(w, r, "pages/checkout_order.html", "Checkout Order", orderDetailData{Order: order, Errors: messages})
			return
		}
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Order updated"})
	http.Redirect(w, r, "/admin/checkouts", http.StatusSeeOther)
}

func (h *Handler) handleOrderDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Order removed"})
	http.Redirect(w, r, "/admin/checkouts", http.StatusSeeOther)
}

func (h *Handler) handleLineEdit(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineId"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	qty, _ := strconv.Atoi(r.PostFormValue("quantity"))
	orderID, _ := strconv.ParseInt(r.PostFormValue("orderId"), 10, 64)
	itemID, _ := strconv.ParseInt(r.PostFormValue("itemId"), 10, 64)

	line := CheckoutItem{CheckoutItemID: lineID, CheckoutOrderID: orderID, ItemID: itemID, Quantity: qty}
	if err := h.service.UpdateLine(r.Context(), line); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Line updated"})
	http.Redirect(w, r, orderPath(orderID), http.StatusSeeOther)
}

func (h *Handler) handleLineDelete(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineId"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	orderID, _ := strconv.ParseInt(r.PostFormValue("orderId"), 10, 64)
	if err := h.service.DeleteLine(r.Context(), lineID); err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.store.AddFlash(shared.FlashMessage{Kind: "success", Message: "Line removed"})
	http.Redirect(w, r, orderPath(orderID), http.StatusSeeOther)
}

func orderPath(orderID int64) string {
	if orderID == 0 {
		return "/admin/checkouts"
	}
	return "/admin/checkouts/" + strconv.FormatInt(orderID, 10)
}

type popularPageData struct {
	Stats PopularStats
}

func (h *Handler) showPopular(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Popular(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}
	h.render(w, r, "pages/popular.html", "Most Popular", popularPageData{Stats: stats})
}

type busyTimesPageData struct {
	HourChart template.HTML
	DayChart  template.HTML
}

func (h *Handler) showBusyTimes(w http.ResponseWriter, r *http.Request) {
	histogram, err := h.service.Busiest(r.Context())
	if err != nil {
		h.renderBackendError(w, r, err)
		return
	}

	data := busyTimesPageData{}
	if len(histogram.HourLabels) > 0 {
		chart, err := svg.Bars(720, 240, histogram.HourTotals, histogram.HourLabels, svg.BarOpts{
			Title:       "Busiest Hours",
			Description: "Checkouts by hour of day",
		})
		if err != nil {
			h.logger.Error("render hour chart", slog.Any("error", err))
		} else {
			data.HourChart = chart
		}
	}
	if len(histogram.DayLabels) > 0 {
		chart, err := svg.Bars(720, 240, histogram.DayTotals, histogram.DayLabels, svg.BarOpts{
			Title:       "Busiest Days",
			Description: "Checkouts by day of week",
		})
		if err != nil {
			h.logger.Error("render day chart", slog.Any("error", err))
		} else {
			data.DayChart = chart
		}
	}
	h.render(w, r, "pages/busy_times.html", "Busiest Times", data)
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
		h.logger.Error("render checkout page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("checkout backend call", slog.Any("error", err))
	h.store.AddFlash(shared.FlashMessage{Kind: "error", Message: "The pantry service is unavailable. Try again shortly."})
	w.WriteHeader(http.StatusBadGateway)
	h.render(w, r, "pages/error.html", "Unavailable", nil)
}
