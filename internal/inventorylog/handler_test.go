package inventorylog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

type fakeItems struct{}

func (fakeItems) List(ctx context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{ItemID: 1, ItemName: "Rice"}}, nil
}

func newHandlerHarness(t *testing.T, repo *memoryRepo) (chi.Router, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := session.NewStore(rdb)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewHandler(logger, NewService(repo), fakeItems{}, templates, store, csrf)
	r := chi.NewRouter()
	handler.Mount(r)
	return r, repo
}

func entryPost(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEntryFormValidation(t *testing.T) {
	r, repo := newHandlerHarness(t, &memoryRepo{})

	cases := []struct {
		form    url.Values
		problem string
	}{
		{url.Values{"quantityChange": {"5"}, "reason": {"Restock"}}, "Choose an item"},
		{url.Values{"itemId": {"1"}, "reason": {"Restock"}}, "Quantity change must be non-zero"},
		{url.Values{"itemId": {"1"}, "quantityChange": {"5"}}, "A reason is required"},
	}
	for _, tc := range cases {
		rec := entryPost(t, r, tc.form)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), tc.problem)
	}
	require.Empty(t, repo.entries, "nothing recorded for a rejected form")
}

func TestEntryFormRecords(t *testing.T) {
	r, repo := newHandlerHarness(t, &memoryRepo{})

	rec := entryPost(t, r, url.Values{
		"itemId":         {"1"},
		"quantityChange": {"-3"},
		"reason":         {"Spoiled"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/inventory-logs", rec.Header().Get("Location"))
	require.Len(t, repo.entries, 1)
	require.Equal(t, -3, repo.entries[0].QuantityChange)
}
