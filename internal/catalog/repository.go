package catalog

import (
	"context"
	"fmt"

	"github.com/retriever-essentials/pantry-web/internal/backend"
)

// Repository reads and writes items through the pantry REST API.
type Repository struct {
	api *backend.Client
}

// NewRepository constructs a Repository.
func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// ListItems fetches the full catalog.
func (r *Repository) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := r.api.Get(ctx, "/api/items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem fetches a single item by ID.
func (r *Repository) GetItem(ctx context.Context, id int64) (Item, error) {
	var item Item
	if err := r.api.Get(ctx, fmt.Sprintf("/api/items/%d", id), &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// PopularItems fetches the most checked-out items.
func (r *Repository) PopularItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := r.api.Get(ctx, "/api/items/popular", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem adds a new item.
func (r *Repository) CreateItem(ctx context.Context, item Item) (Item, error) {
	var created Item
	if err := r.api.Post(ctx, "/api/items", item, &created); err != nil {
		return Item{}, err
	}
	return created, nil
}

// UpdateItem replaces an existing item.
func (r *Repository) UpdateItem(ctx context.Context, item Item) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/items/%d", item.ItemID), item)
}

// DeleteItem removes an item.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/items/%d", id))
}
