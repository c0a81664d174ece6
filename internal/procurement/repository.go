package procurement

import (
	"context"
	"fmt"

	"github.com/retriever-essentials/pantry-web/internal/backend"
)

// Repository reads and writes vendors and purchase orders through the pantry
// REST API.
type Repository struct {
	api *backend.Client
}

func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// ListVendors fetches every vendor.
func (r *Repository) ListVendors(ctx context.Context) ([]Vendor, error) {
	var vendors []Vendor
	if err := r.api.Get(ctx, "/api/vendor", &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// GetVendor fetches a vendor by ID.
func (r *Repository) GetVendor(ctx context.Context, id int64) (Vendor, error) {
	var vendor Vendor
	if err := r.api.Get(ctx, fmt.Sprintf("/api/vendor/%d", id), &vendor); err != nil {
		return Vendor{}, err
	}
	return vendor, nil
}

// CreateVendor adds a new vendor.
func (r *Repository) CreateVendor(ctx context.Context, vendor Vendor) (Vendor, error) {
	var created Vendor
	if err := r.api.Post(ctx, "/api/vendor", vendor, &created); err != nil {
		return Vendor{}, err
	}
	return created, nil
}

// UpdateVendor replaces an existing vendor.
func (r *Repository) UpdateVendor(ctx context.Context, vendor Vendor) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/vendor/%d", vendor.VendorID), vendor)
}

// DisableVendor retires a vendor. The backend soft-deletes it.
func (r *Repository) DisableVendor(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/vendor/%d", id))
}

// ListPurchases fetches every purchase order.
func (r *Repository) ListPurchases(ctx context.Context) ([]PurchaseOrder, error) {
	var orders []PurchaseOrder
	if err := r.api.Get(ctx, "/api/purchase", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetPurchase fetches a purchase order by ID.
func (r *Repository) GetPurchase(ctx context.Context, id int64) (PurchaseOrder, error) {
	var order PurchaseOrder
	if err := r.api.Get(ctx, fmt.Sprintf("/api/purchase/%d", id), &order); err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

// CreatePurchase places a new purchase order.
func (r *Repository) CreatePurchase(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	var created PurchaseOrder
	if err := r.api.Post(ctx, "/api/purchase", order, &created); err != nil {
		return PurchaseOrder{}, err
	}
	return created, nil
}

// UpdatePurchase replaces an existing purchase order.
func (r *Repository) UpdatePurchase(ctx context.Context, order PurchaseOrder) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/purchase/%d", order.PurchaseID), order)
}

// DeletePurchase removes a purchase order and its lines.
func (r *Repository) DeletePurchase(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/purchase/%d", id))
}

// UpdatePurchaseItem replaces a single purchase line.
func (r *Repository) UpdatePurchaseItem(ctx context.Context, line PurchaseItem) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/purchase-item/%d", line.PurchaseItemID), line)
}

// DeletePurchaseItem removes a single purchase line.
func (r *Repository) DeletePurchaseItem(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/purchase-item/%d", id))
}
