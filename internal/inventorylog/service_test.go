package inventorylog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	entries []Entry
	byItem  map[string][]Entry
	byEmail map[string][]Entry
}

func (m *memoryRepo) ListEntries(ctx context.Context) ([]Entry, error) {
	return append([]Entry(nil), m.entries...), nil
}

func (m *memoryRepo) EntriesByItem(ctx context.Context, itemName string) ([]Entry, error) {
	return m.byItem[itemName], nil
}

func (m *memoryRepo) EntriesByAuthority(ctx context.Context, email string) ([]Entry, error) {
	return m.byEmail[email], nil
}

func (m *memoryRepo) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return Entry{}, nil
}

func (m *memoryRepo) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	entry.LogID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memoryRepo) UpdateEntry(ctx context.Context, entry Entry) error { return nil }
func (m *memoryRepo) DeleteEntry(ctx context.Context, id int64) error   { return nil }

func TestListNewestFirst(t *testing.T) {
	repo := &memoryRepo{entries: []Entry{
		{LogID: 1, TimeStamp: "2026-01-10T08:00:00"},
		{LogID: 2, TimeStamp: "2026-01-12T08:00:00"},
		{LogID: 3, TimeStamp: "2026-01-11T08:00:00"},
	}}
	svc := NewService(repo)

	entries, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	require.EqualValues(t, 2, entries[0].LogID)
	require.EqualValues(t, 3, entries[1].LogID)
	require.EqualValues(t, 1, entries[2].LogID)
}

func TestListItemFilterTakesPrecedence(t *testing.T) {
	repo := &memoryRepo{
		byItem:  map[string][]Entry{"Rice": {{LogID: 7, ItemName: "Rice"}}},
		byEmail: map[string][]Entry{"authority@pantry.edu": {{LogID: 8}}},
	}
	svc := NewService(repo)

	entries, err := svc.List(context.Background(), "Rice", "authority@pantry.edu")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.EqualValues(t, 7, entries[0].LogID)
}

func TestRecordStampsActorAndTime(t *testing.T) {
	repo := &memoryRepo{}
	when := time.Date(2026, 5, 2, 16, 45, 0, 0, time.UTC)
	svc := NewService(repo).WithClock(func() time.Time { return when })

	entry, err := svc.Record(context.Background(), 4, 9, -3, " damaged packaging ")
	require.NoError(t, err)
	require.EqualValues(t, 4, entry.AuthorityID)
	require.EqualValues(t, 9, entry.ItemID)
	require.Equal(t, -3, entry.QuantityChange)
	require.Equal(t, "damaged packaging", entry.Reason)
	require.Equal(t, "2026-05-02T16:45:00", entry.TimeStamp)
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(&memoryRepo{})

	_, err := svc.Record(context.Background(), 4, 9, 0, "recount")
	require.ErrorIs(t, err, ErrZeroChange)

	_, err = svc.Record(context.Background(), 4, 9, 5, "   ")
	require.ErrorIs(t, err, ErrMissingReason)
}
