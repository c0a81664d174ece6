package cart

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

type fakeItems struct {
	items map[int64]catalog.Item
}

func (f *fakeItems) Get(ctx context.Context, id int64) (catalog.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return catalog.Item{}, shared.ErrNotFound
	}
	return item, nil
}

func kioskToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "staff@pantry.edu",
		"role":      "ROLE_AUTHORITY",
		"appUserId": 5,
		"exp":       exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func newCartHarness(t *testing.T, orders *fakeOrders) (chi.Router, *Cart, *session.Store, *bytes.Buffer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := session.NewStore(rdb)
	templates, err := view.NewEngine()
	require.NoError(t, err)
	csrf := shared.NewCSRFManager("test-secret")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	c := New()
	items := &fakeItems{items: map[int64]catalog.Item{
		rice.ItemID: {ItemID: rice.ItemID, ItemName: rice.ItemName, ItemLimit: rice.ItemLimit, CurrentCount: 10},
	}}
	handler := NewHandler(logger, c, NewService(c, orders), items, templates, store, csrf, nil)

	r := chi.NewRouter()
	handler.Mount(r)
	return r, c, store, &logs
}

func cartPost(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestScanMintsVisitID(t *testing.T) {
	r, _, store, logs := newCartHarness(t, &fakeOrders{})

	rec := cartPost(t, r, "/scan", url.Values{"studentId": {"ab12345"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/shop", rec.Header().Get("Location"))

	require.Equal(t, "AB12345", store.Value("scannedStudentId"))
	visitID := store.Value("kioskVisitId")
	require.NotEmpty(t, visitID)
	require.Contains(t, logs.String(), visitID)
}

func TestScanRejectsMalformedID(t *testing.T) {
	r, _, store, _ := newCartHarness(t, &fakeOrders{})

	rec := cartPost(t, r, "/scan", url.Values{"studentId": {"A12345"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, store.Value("scannedStudentId"))
	require.Empty(t, store.Value("kioskVisitId"))
}

func TestCheckoutCarriesScanVisitID(t *testing.T) {
	orders := &fakeOrders{}
	r, c, store, logs := newCartHarness(t, orders)
	ctx := context.Background()

	require.NoError(t, store.Establish(ctx, kioskToken(t, time.Now().Add(time.Hour))))
	require.NoError(t, store.EnableSelfCheckout(ctx))

	rec := cartPost(t, r, "/scan", url.Values{"studentId": {"AB12345"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	visitID := store.Value("kioskVisitId")
	require.NotEmpty(t, visitID)

	c.Add(rice)
	rec = cartPost(t, r, "/checkout", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/shop", rec.Header().Get("Location"))
	require.NotNil(t, orders.created)
	require.Equal(t, "AB12345", orders.created.StudentID)

	// Scan and submission log lines correlate on the same visit ID,
	// and the visit state is gone once the order is accepted.
	require.Equal(t, 2, strings.Count(logs.String(), visitID))
	require.Empty(t, store.Value("kioskVisitId"))
	require.Empty(t, store.Value("scannedStudentId"))
}

func TestStaffedCheckoutMintsVisitID(t *testing.T) {
	orders := &fakeOrders{}
	r, c, store, logs := newCartHarness(t, orders)

	require.NoError(t, store.Establish(context.Background(), kioskToken(t, time.Now().Add(time.Hour))))

	c.Add(rice)
	rec := cartPost(t, r, "/checkout", url.Values{"studentId": {"CD67890"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, logs.String(), "visit_id")
	require.Contains(t, logs.String(), "checkout submitted")
}
