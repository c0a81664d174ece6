package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	items  []Item
	nextID int64
}

func (r *memoryRepo) ListItems(ctx context.Context) ([]Item, error) {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *memoryRepo) GetItem(ctx context.Context, id int64) (Item, error) {
	for _, item := range r.items {
		if item.ItemID == id {
			return item, nil
		}
	}
	return Item{}, ErrUnknownCategory
}

func (r *memoryRepo) PopularItems(ctx context.Context) ([]Item, error) {
	return r.items, nil
}

func (r *memoryRepo) CreateItem(ctx context.Context, item Item) (Item, error) {
	r.nextID++
	item.ItemID = r.nextID
	r.items = append(r.items, item)
	return item, nil
}

func (r *memoryRepo) UpdateItem(ctx context.Context, item Item) error {
	for i := range r.items {
		if r.items[i].ItemID == item.ItemID {
			r.items[i] = item
			return nil
		}
	}
	return ErrUnknownCategory
}

func (r *memoryRepo) DeleteItem(ctx context.Context, id int64) error {
	for i := range r.items {
		if r.items[i].ItemID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrUnknownCategory
}

func seededRepo() *memoryRepo {
	return &memoryRepo{
		items: []Item{
			{ItemID: 1, ItemName: "Rice", Category: "Pantry", CurrentCount: 10, ItemLimit: 2},
			{ItemID: 2, ItemName: "Pocky Sticks", Category: "Asian", CurrentCount: 5, ItemLimit: 1},
			{ItemID: 3, ItemName: "Ramen 12 Pack", Category: "Asian", CurrentCount: 8, ItemLimit: 1},
		},
		nextID: 3,
	}
}

func TestListSortsByName(t *testing.T) {
	svc := NewService(seededRepo())
	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Pocky Sticks", "Ramen 12 Pack", "Rice"}, names(items))
}

func TestByCategory(t *testing.T) {
	svc := NewService(seededRepo())

	items, err := svc.ByCategory(context.Background(), "Asian")
	require.NoError(t, err)
	require.Equal(t, []string{"Pocky Sticks", "Ramen 12 Pack"}, names(items))

	_, err = svc.ByCategory(context.Background(), "Cryptids")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestSearch(t *testing.T) {
	svc := NewService(seededRepo())

	items, err := svc.Search(context.Background(), "rAmEn")
	require.NoError(t, err)
	require.Equal(t, []string{"Ramen 12 Pack"}, names(items))

	items, err = svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestSaveCreatesAndUpdates(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Save(ctx, Item{ItemName: "Naan", Category: "Indian", ItemLimit: 2})
	require.NoError(t, err)
	require.NotZero(t, created.ItemID)

	created.CurrentCount = 12
	_, err = svc.Save(ctx, created)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, created.ItemID)
	require.NoError(t, err)
	require.Equal(t, 12, stored.CurrentCount)
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ItemName
	}
	return out
}
