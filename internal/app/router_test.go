package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/retriever-essentials/pantry-web/internal/auth"
	"github.com/retriever-essentials/pantry-web/internal/authapi"
	"github.com/retriever-essentials/pantry-web/internal/cart"
	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/checkouts"
	"github.com/retriever-essentials/pantry-web/internal/guard"
	"github.com/retriever-essentials/pantry-web/internal/inventorylog"
	"github.com/retriever-essentials/pantry-web/internal/procurement"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/users"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

type stubAuth struct {
	reauthOK bool
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (authapi.Result, error) {
	return authapi.Result{}, &authapi.Error{Status: http.StatusUnauthorized}
}

func (s *stubAuth) Refresh(ctx context.Context, existingToken string) (authapi.Result, error) {
	return authapi.Result{}, &authapi.Error{Status: http.StatusUnauthorized}
}

func (s *stubAuth) Reauthenticate(ctx context.Context, email, password string) (bool, error) {
	return s.reauthOK, nil
}

func routerToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "admin@pantry.edu",
		"role":      role,
		"appUserId": 1,
		"exp":       exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func newRouterHarness(t *testing.T) (http.Handler, *session.Store, *shared.CSRFManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := session.NewStore(rdb)
	csrf := shared.NewCSRFManager("test-secret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{
		AppEnv:            "development",
		AppRequestTimeout: 30 * time.Second,
	}

	// None of the routes exercised here reach a backend call, so the
	// services carry nil repositories.
	catalogService := catalog.NewService(nil)
	checkoutsService := checkouts.NewService(nil)
	procurementService := procurement.NewService(nil)
	usersService := users.NewService(nil)
	inventoryLogService := inventorylog.NewService(nil)
	shoppingCart := cart.New()

	router := NewRouter(RouterParams{
		Logger:      logger,
		Config:      cfg,
		Templates:   templates,
		Store:       store,
		CSRFManager: csrf,
		Guard:       guard.Middleware{Store: store, Logger: logger},

		AuthHandler:         auth.NewHandler(logger, &stubAuth{reauthOK: true}, templates, store, csrf),
		CatalogHandler:      catalog.NewHandler(logger, catalogService, templates, store, csrf),
		CartHandler:         cart.NewHandler(logger, shoppingCart, cart.NewService(shoppingCart, nil), catalogService, templates, store, csrf, nil),
		CheckoutsHandler:    checkouts.NewHandler(logger, checkoutsService, templates, store, csrf),
		ProcurementHandler:  procurement.NewHandler(logger, procurementService, catalogService, templates, store, csrf),
		UsersHandler:        users.NewHandler(logger, usersService, templates, store, csrf),
		InventoryLogHandler: inventorylog.NewHandler(logger, inventoryLogService, catalogService, templates, store, csrf),
	})
	return router, store, csrf
}

func routerPost(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterKioskLockoutKeepsDisableReachable(t *testing.T) {
	router, store, csrf := newRouterHarness(t)
	ctx := context.Background()

	require.NoError(t, store.Establish(ctx, routerToken(t, "ROLE_ADMIN", time.Now().Add(time.Hour))))
	require.NoError(t, store.EnableSelfCheckout(ctx))

	csrfToken, err := csrf.EnsureToken(store)
	require.NoError(t, err)

	// Role-guarded routes redirect while the kiosk flag is on.
	for _, path := range []string{"/dashboard", "/admin/items", "/admin/users"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		require.Equal(t, "/unauthorized", rec.Header().Get("Location"), path)
	}

	// The two-step disable flow stays reachable through the full stack.
	rec := routerPost(t, router, "/dashboard/self-checkout/disable", url.Values{
		shared.CSRFFormField: {csrfToken},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "password")

	rec = routerPost(t, router, "/dashboard/self-checkout/disable/confirm", url.Values{
		shared.CSRFFormField: {csrfToken},
		"password":           {"right"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.False(t, store.Snapshot().SelfCheckout)

	// With the flag off the dashboard is staff territory again.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	recDash := httptest.NewRecorder()
	router.ServeHTTP(recDash, req)
	require.Equal(t, http.StatusOK, recDash.Code)
}

func TestRouterUnauthorizedPageOffersTurnOff(t *testing.T) {
	router, store, _ := newRouterHarness(t)
	ctx := context.Background()

	require.NoError(t, store.Establish(ctx, routerToken(t, "ROLE_AUTHORITY", time.Now().Add(time.Hour))))
	require.NoError(t, store.EnableSelfCheckout(ctx))

	req := httptest.NewRequest(http.MethodGet, "/unauthorized", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "/dashboard/self-checkout/disable")
}
