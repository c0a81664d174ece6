package checkouts

import (
	"context"
	"fmt"

	"github.com/retriever-essentials/pantry-web/internal/backend"
)

// Repository reads and writes checkout orders through the pantry REST API.
type Repository struct {
	api *backend.Client
}

// NewRepository constructs a Repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// ListOrders fetches checkout history.
func (r *Repository) ListOrders(ctx context.Context) ([]CheckoutOrder, error) {
	var orders []CheckoutOrder
	if err := r.api.Get(ctx, "/api/checkout-order", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order including its items.
func (r *Repository) GetOrder(ctx context.Context, id int64) (CheckoutOrder, error) {
	var order CheckoutOrder
	if err := r.api.Get(ctx, fmt.Sprintf("/api/checkout-order/%d", id), &order); err != nil {
		return CheckoutOrder{}, err
	}
	return order, nil
}

// CreateOrder submits a new checkout order with its items.
func (r *Repository) CreateOrder(ctx context.Context, order CheckoutOrder) (CheckoutOrder, error) {
	var created CheckoutOrder
	if err := r.api.Post(ctx, "/api/checkout-order", order, &created); err != nil {
		return CheckoutOrder{}, err
	}
	return created, nil
}

// UpdateOrder replaces an existing order.
func (r *Repository) UpdateOrder(ctx context.Context, order CheckoutOrder) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/checkout-order/%d", order.CheckoutOrderID), order)
}

// DeleteOrder removes an order.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/checkout-order/%d", id))
}

// BusiestTimes fetches the day/hour checkout histogram.
func (r *Repository) BusiestTimes(ctx context.Context) ([]BusySlot, error) {
	var slots []BusySlot
	if err := r.api.Get(ctx, "/api/checkout-order/busiest", &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// UpdateItem replaces a checkout item line.
func (r *Repository) UpdateItem(ctx context.Context, item CheckoutItem) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/checkout-item/%d", item.CheckoutItemID), item)
}

// DeleteItem removes a checkout item line.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/checkout-item/%d", id))
}

// PopularItems fetches per-item checkout counts.
func (r *Repository) PopularItems(ctx context.Context) ([]PopularItem, error) {
	var items []PopularItem
	if err := r.api.Get(ctx, "/api/checkout-item/popular-items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PopularCategories fetches per-category checkout counts.
func (r *Repository) PopularCategories(ctx context.Context) ([]PopularCategory, error) {
	var categories []PopularCategory
	if err := r.api.Get(ctx, "/api/checkout-item/popular-categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
