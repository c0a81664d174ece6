package inventorylog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/retriever-essentials/pantry-web/internal/backend"
)

// Repository reads and writes inventory log entries through the pantry REST
// API.
type Repository struct {
	api *backend.Client
}

func NewRepository(api *backend.Client) *Repository {
	return &Repository{api: api}
}

// ListEntries fetches every log entry.
func (r *Repository) ListEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := r.api.Get(ctx, "/api/inventory-log", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EntriesByItem fetches the entries touching a single item.
func (r *Repository) EntriesByItem(ctx context.Context, itemName string) ([]Entry, error) {
	var entries []Entry
	path := "/api/inventory-log/item/" + url.PathEscape(itemName)
	if err := r.api.Get(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EntriesByAuthority fetches the entries recorded by a single staff member.
func (r *Repository) EntriesByAuthority(ctx context.Context, email string) ([]Entry, error) {
	var entries []Entry
	path := "/api/inventory-log/authority/" + url.PathEscape(email)
	if err := r.api.Get(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry fetches a single log entry.
func (r *Repository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	var entry Entry
	if err := r.api.Get(ctx, fmt.Sprintf("/api/inventory-log/%d", id), &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// CreateEntry records a new adjustment.
func (r *Repository) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	var created Entry
	if err := r.api.Post(ctx, "/api/inventory-log", entry, &created); err != nil {
		return Entry{}, err
	}
	return created, nil
}

// UpdateEntry replaces an existing entry.
func (r *Repository) UpdateEntry(ctx context.Context, entry Entry) error {
	return r.api.Put(ctx, fmt.Sprintf("/api/inventory-log/%d", entry.LogID), entry)
}

// DeleteEntry removes an entry.
func (r *Repository) DeleteEntry(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/inventory-log/%d", id))
}
