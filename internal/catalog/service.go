package catalog

import (
	"context"
	"sort"
	"strings"
)

// RepositoryPort abstracts item access for the service.
type RepositoryPort interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	PopularItems(ctx context.Context) ([]Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// Service coordinates catalog reads and admin item maintenance.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the full catalog sorted by name.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ItemName < items[j].ItemName
	})
	return items, nil
}

// ByCategory returns the items on one of the fixed category pages.
func (s *Service) ByCategory(ctx context.Context, category string) ([]Item, error) {
	if !KnownCategory(category) {
		return nil, ErrUnknownCategory
	}
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := items[:0]
	for _, item := range items {
		if strings.EqualFold(item.Category, category) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Search returns items whose name contains the term, case-insensitively.
func (s *Service) Search(ctx context.Context, term string) ([]Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	var matched []Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ItemName), term) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

// Popular returns the most frequently checked-out items.
func (s *Service) Popular(ctx context.Context) ([]Item, error) {
	return s.repo.PopularItems(ctx)
}

// Save creates or updates an item depending on whether it has an ID.
func (s *Service) Save(ctx context.Context, item Item) (Item, error) {
	if item.ItemID == 0 {
		return s.repo.CreateItem(ctx, item)
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes an item from the catalog.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}
