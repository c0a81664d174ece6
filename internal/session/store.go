// Package session owns the kiosk's process-wide session: the decoded
// identity, the raw backend token, and the self-checkout flag. State is
// persisted in a local Redis instance so it survives restarts, under the
// same keys the web client used (token, selfCheckoutEnabled, email, role).
// The email and role keys are display copies only; identity is always
// reconstructed by decoding the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/token"
)

// Persisted storage keys.
const (
	keyToken        = "token"
	keySelfCheckout = "selfCheckoutEnabled"
	keyEmail        = "email"
	keyRole         = "role"
)

// ErrExpiredToken rejects tokens that are already past their expiry.
var ErrExpiredToken = errors.New("session: token expired")

// ErrNoPendingDisable rejects a confirmation without a prior request.
var ErrNoPendingDisable = errors.New("session: no pending self-checkout disable")

// Identity is the in-memory representation of who is signed in.
type Identity struct {
	UserID int64
	Email  string
	Role   token.Role
}

// Snapshot is a consistent, read-only view of the session for guards and
// templates. Expiry is re-checked at snapshot time, so an expired token is
// never observed as authenticated.
type Snapshot struct {
	Authenticated bool
	Identity      Identity
	SelfCheckout  bool
}

// Store is the single owner of session state. All operations are serialized
// behind a mutex so a guard check never observes a half-applied update.
type Store struct {
	client *redis.Client
	clock  func() time.Time

	mu             sync.Mutex
	rawToken       string
	identity       Identity
	claims         token.Claims
	authenticated  bool
	selfCheckout   bool
	pendingDisable bool
	values         map[string]string
	flashes        []shared.FlashMessage
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore constructs a Store backed by the given Redis client.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		clock:  time.Now,
		values: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate restores session state from persisted storage. A missing,
// malformed, or expired token leaves the store unauthenticated and scrubs
// the persisted keys, including the self-checkout flag.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.client.Get(ctx, keyToken).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: read token: %w", err)
	}
	if errors.Is(err, redis.Nil) || raw == "" {
		return s.clearLocked(ctx)
	}

	claims, decodeErr := token.Decode(raw)
	if decodeErr != nil || claims.Expired(s.clock()) {
		// Indistinguishable from "not logged in"; discard silently.
		return s.clearLocked(ctx)
	}

	flag, err := s.client.Get(ctx, keySelfCheckout).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: read self-checkout flag: %w", err)
	}

	s.adoptLocked(raw, claims)
	s.selfCheckout = flag == "true"
	return nil
}

// Establish adopts a freshly issued token after a successful login or
// refresh. The token, identity, and display copies update atomically.
func (s *Store) Establish(ctx context.Context, rawToken string) error {
	claims, err := token.Decode(rawToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if claims.Expired(s.clock()) {
		return ErrExpiredToken
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyToken, rawToken, 0)
	pipe.Set(ctx, keyEmail, claims.Subject, 0)
	pipe.Set(ctx, keyRole, claims.Role.Wire(), 0)
	pipe.Set(ctx, keySelfCheckout, strconv.FormatBool(s.selfCheckout), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: persist token: %w", err)
	}

	s.adoptLocked(rawToken, claims)
	return nil
}

// Logout unconditionally clears the token, identity, and self-checkout
// flag, both in memory and in persisted storage. In-memory state is
// scrubbed even when persistence fails so a stale identity is never served.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// EnableSelfCheckout switches the session into unattended kiosk mode.
// Turning the flag on requires an authenticated session but no re-check.
func (s *Store) EnableSelfCheckout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticatedLocked() {
		return shared.ErrNotAuthenticated
	}
	if err := s.client.Set(ctx, keySelfCheckout, "true", 0).Err(); err != nil {
		return fmt.Errorf("session: persist self-checkout flag: %w", err)
	}
	s.selfCheckout = true
	s.pendingDisable = false
	return nil
}

// RequestDisableSelfCheckout begins the two-step disable protocol. The flag
// only flips once ConfirmDisableSelfCheckout is called with a successful
// re-authentication result.
func (s *Store) RequestDisableSelfCheckout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selfCheckout {
		return ErrNoPendingDisable
	}
	s.pendingDisable = true
	return nil
}

// ConfirmDisableSelfCheckout completes the disable protocol. A failed
// re-authentication leaves kiosk mode untouched.
func (s *Store) ConfirmDisableSelfCheckout(ctx context.Context, reauthOK bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pendingDisable {
		return ErrNoPendingDisable
	}
	s.pendingDisable = false
	if !reauthOK {
		return shared.ErrInvalidCredentials
	}
	if err := s.client.Set(ctx, keySelfCheckout, "false", 0).Err(); err != nil {
		return fmt.Errorf("session: persist self-checkout flag: %w", err)
	}
	s.selfCheckout = false
	return nil
}

// Token returns the raw held token, or empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticatedLocked() {
		return ""
	}
	return s.rawToken
}

// Snapshot returns a consistent view of the session. A session whose token
// has expired since the last mutation reads as unauthenticated.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticatedLocked() {
		return Snapshot{}
	}
	return Snapshot{
		Authenticated: true,
		Identity:      s.identity,
		SelfCheckout:  s.selfCheckout,
	}
}

// Value returns an in-memory session value (e.g. the CSRF token).
func (s *Store) Value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// SetValue stores an in-memory session value.
func (s *Store) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// AddFlash queues a one-time notification.
func (s *Store) AddFlash(msg shared.FlashMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, msg)
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Store) PopFlash() *shared.FlashMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	return &msg
}

func (s *Store) authenticatedLocked() bool {
	return s.authenticated && !s.claims.Expired(s.clock())
}

func (s *Store) adoptLocked(raw string, claims token.Claims) {
	s.rawToken = raw
	s.claims = claims
	s.identity = Identity{
		UserID: claims.AppUserID,
		Email:  claims.Subject,
		Role:   claims.Role,
	}
	s.authenticated = true
	s.pendingDisable = false
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.rawToken = ""
	s.claims = token.Claims{}
	s.identity = Identity{}
	s.authenticated = false
	s.selfCheckout = false
	s.pendingDisable = false

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keyToken, keyEmail, keyRole)
	pipe.Set(ctx, keySelfCheckout, "false", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: clear persisted state: %w", err)
	}
	return nil
}
