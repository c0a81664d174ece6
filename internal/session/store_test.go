package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/token"
)

func issueToken(t *testing.T, email, role string, userID int64, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       email,
		"role":      role,
		"appUserId": userID,
		"exp":       exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func newTestStore(t *testing.T, now *time.Time) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	store := NewStore(client, WithClock(func() time.Time { return *now }))
	return store, mr
}

func TestHydrateWithValidToken(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)
	ctx := context.Background()

	raw := issueToken(t, "authority@pantry.edu", "ROLE_AUTHORITY", 4, now.Add(time.Hour))
	mr.Set("token", raw)
	mr.Set("selfCheckoutEnabled", "true")

	require.NoError(t, store.Hydrate(ctx))

	snap := store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "authority@pantry.edu", snap.Identity.Email)
	require.Equal(t, token.RoleAuthority, snap.Identity.Role)
	require.EqualValues(t, 4, snap.Identity.UserID)
	require.True(t, snap.SelfCheckout)
	require.Equal(t, raw, store.Token())
}

func TestHydrateWithExpiredToken(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)
	ctx := context.Background()

	// Expired one second before hydration time.
	mr.Set("token", issueToken(t, "admin@pantry.edu", "ROLE_ADMIN", 1, now.Add(-time.Second)))
	mr.Set("selfCheckoutEnabled", "true")

	require.NoError(t, store.Hydrate(ctx))

	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.False(t, snap.SelfCheckout)
	require.False(t, mr.Exists("token"))
	flag, err := mr.Get("selfCheckoutEnabled")
	require.NoError(t, err)
	require.Equal(t, "false", flag)
}

func TestHydrateWithMalformedToken(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)

	mr.Set("token", "not-a-token")

	require.NoError(t, store.Hydrate(context.Background()))
	require.False(t, store.Snapshot().Authenticated)
	require.False(t, mr.Exists("token"))
}

func TestHydrateWithoutToken(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)
	mr.Set("selfCheckoutEnabled", "true")

	require.NoError(t, store.Hydrate(context.Background()))

	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.False(t, snap.SelfCheckout)
}

func TestEstablishPersistsAllKeys(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)
	ctx := context.Background()

	raw := issueToken(t, "admin@pantry.edu", "ROLE_ADMIN", 7, now.Add(time.Hour))
	require.NoError(t, store.Establish(ctx, raw))

	stored, err := mr.Get("token")
	require.NoError(t, err)
	require.Equal(t, raw, stored)

	email, err := mr.Get("email")
	require.NoError(t, err)
	require.Equal(t, "admin@pantry.edu", email)

	role, err := mr.Get("role")
	require.NoError(t, err)
	require.Equal(t, "ROLE_ADMIN", role)

	flag, err := mr.Get("selfCheckoutEnabled")
	require.NoError(t, err)
	require.Equal(t, "false", flag)

	snap := store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, token.RoleAdmin, snap.Identity.Role)
}

func TestEstablishRejectsExpiredToken(t *testing.T) {
	now := time.Now()
	store, _ := newTestStore(t, &now)

	raw := issueToken(t, "admin@pantry.edu", "ROLE_ADMIN", 7, now.Add(-time.Minute))
	err := store.Establish(context.Background(), raw)
	require.ErrorIs(t, err, ErrExpiredToken)
	require.False(t, store.Snapshot().Authenticated)
}

func TestEstablishRejectsMalformedToken(t *testing.T) {
	now := time.Now()
	store, _ := newTestStore(t, &now)

	err := store.Establish(context.Background(), "garbage")
	require.ErrorIs(t, err, token.ErrDecode)
}

func TestLogoutClearsEverything(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)
	ctx := context.Background()

	raw := issueToken(t, "admin@pantry.edu", "ROLE_ADMIN", 7, now.Add(time.Hour))
	require.NoError(t, store.Establish(ctx, raw))
	require.NoError(t, store.EnableSelfCheckout(ctx))

	require.NoError(t, store.Logout(ctx))

	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.False(t, snap.SelfCheckout)
	require.Empty(t, store.Token())
	require.False(t, mr.Exists("token"))

	flag, err := mr.Get("selfCheckoutEnabled")
	require.NoError(t, err)
	require.Equal(t, "false", flag)
}

func TestEnableSelfCheckoutRequiresAuthentication(t *testing.T) {
	now := time.Now()
	store, _ := newTestStore(t, &now)

	err := store.EnableSelfCheckout(context.Background())
	require.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestDisableSelfCheckoutProtocol(t *testing.T) {
	now := time.Now()
	store, mr := newTestStore(t, &now)
	ctx := context.Background()

	raw := issueToken(t, "admin@pantry.edu", "ROLE_ADMIN", 7, now.Add(time.Hour))
	require.NoError(t, store.Establish(ctx, raw))
	require.NoError(t, store.EnableSelfCheckout(ctx))

	// Confirmation without a prior request is rejected.
	require.ErrorIs(t, store.ConfirmDisableSelfCheckout(ctx, true), ErrNoPendingDisable)

	// A failed re-auth leaves kiosk mode on.
	require.NoError(t, store.RequestDisableSelfCheckout())
	require.ErrorIs(t, store.ConfirmDisableSelfCheckout(ctx, false), shared.ErrInvalidCredentials)
	require.True(t, store.Snapshot().SelfCheckout)

	// The pending request is consumed by the failed attempt.
	require.ErrorIs(t, store.ConfirmDisableSelfCheckout(ctx, true), ErrNoPendingDisable)

	// A successful re-auth flips and persists the flag.
	require.NoError(t, store.RequestDisableSelfCheckout())
	require.NoError(t, store.ConfirmDisableSelfCheckout(ctx, true))
	require.False(t, store.Snapshot().SelfCheckout)

	flag, err := mr.Get("selfCheckoutEnabled")
	require.NoError(t, err)
	require.Equal(t, "false", flag)
}

func TestRequestDisableRequiresKioskMode(t *testing.T) {
	now := time.Now()
	store, _ := newTestStore(t, &now)
	require.ErrorIs(t, store.RequestDisableSelfCheckout(), ErrNoPendingDisable)
}

func TestSnapshotRechecksExpiry(t *testing.T) {
	now := time.Now()
	store, _ := newTestStore(t, &now)
	ctx := context.Background()

	raw := issueToken(t, "admin@pantry.edu", "ROLE_ADMIN", 7, now.Add(time.Minute))
	require.NoError(t, store.Establish(ctx, raw))
	require.True(t, store.Snapshot().Authenticated)

	// The process outlives the token; reads must not serve a stale identity.
	now = now.Add(2 * time.Minute)
	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.Empty(t, store.Token())
}

func TestFlashQueue(t *testing.T) {
	now := time.Now()
	store, _ := newTestStore(t, &now)

	require.Nil(t, store.PopFlash())
	store.AddFlash(shared.FlashMessage{Kind: "success", Message: "saved"})
	store.AddFlash(shared.FlashMessage{Kind: "error", Message: "nope"})

	first := store.PopFlash()
	require.NotNil(t, first)
	require.Equal(t, "saved", first.Message)

	second := store.PopFlash()
	require.NotNil(t, second)
	require.Equal(t, "error", second.Message)
	require.Nil(t, store.PopFlash())
}
