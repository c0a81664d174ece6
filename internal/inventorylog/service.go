package inventorylog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrZeroChange rejects an adjustment that would not move the count.
var ErrZeroChange = errors.New("inventorylog: quantity change must be non-zero")

// ErrMissingReason rejects an adjustment without an explanation.
var ErrMissingReason = errors.New("inventorylog: reason is required")

// RepositoryPort is the persistence contract the service depends on.
type RepositoryPort interface {
	ListEntries(ctx context.Context) ([]Entry, error)
	EntriesByItem(ctx context.Context, itemName string) ([]Entry, error)
	EntriesByAuthority(ctx context.Context, email string) ([]Entry, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) error
	DeleteEntry(ctx context.Context, id int64) error
}

// Service holds the inventory log use cases.
type Service struct {
	repo  RepositoryPort
	clock func() time.Time
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// List returns log entries newest first, optionally filtered by item name or
// authority email. Item takes precedence when both filters are set.
func (s *Service) List(ctx context.Context, itemName, authorityEmail string) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	switch {
	case itemName != "":
		entries, err = s.repo.EntriesByItem(ctx, itemName)
	case authorityEmail != "":
		entries, err = s.repo.EntriesByAuthority(ctx, authorityEmail)
	default:
		entries, err = s.repo.ListEntries(ctx)
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Time().After(entries[j].Time())
	})
	return entries, nil
}

// Get fetches a single entry.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// Record stamps and submits a new adjustment on behalf of the acting staff
// member.
func (s *Service) Record(ctx context.Context, authorityID, itemID int64, change int, reason string) (Entry, error) {
	reason = strings.TrimSpace(reason)
	if change == 0 {
		return Entry{}, ErrZeroChange
	}
	if reason == "" {
		return Entry{}, ErrMissingReason
	}
	entry := Entry{
		AuthorityID:    authorityID,
		ItemID:         itemID,
		QuantityChange: change,
		Reason:         reason,
		TimeStamp:      FormatTimeStamp(s.clock()),
	}
	return s.repo.CreateEntry(ctx, entry)
}

// Update replaces an existing entry.
func (s *Service) Update(ctx context.Context, entry Entry) error {
	if entry.QuantityChange == 0 {
		return ErrZeroChange
	}
	if strings.TrimSpace(entry.Reason) == "" {
		return ErrMissingReason
	}
	return s.repo.UpdateEntry(ctx, entry)
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteEntry(ctx, id)
}
