package cart

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/retriever-essentials/pantry-web/internal/checkouts"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
)

var (
	// ErrEmptyCart rejects a checkout with nothing in it.
	ErrEmptyCart = errors.New("cart: nothing to check out")
	// ErrInvalidStudentID rejects campus IDs outside the expected format.
	ErrInvalidStudentID = errors.New("cart: invalid campus id")
)

// studentIDPattern is the campus ID format: two letters, five digits.
var studentIDPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{5}$`)

// ValidStudentID reports whether id matches the campus ID format.
func ValidStudentID(id string) bool {
	return studentIDPattern.MatchString(id)
}

// SubmitPort is the slice of checkout order access the cart needs.
type SubmitPort interface {
	CreateOrder(ctx context.Context, order checkouts.CheckoutOrder) (checkouts.CheckoutOrder, error)
}

// Service turns the cart into a checkout order against the backend.
type Service struct {
	cart   *Cart
	orders SubmitPort
	clock  func() time.Time
}

// NewService constructs a Service.
func NewService(cart *Cart, orders SubmitPort) *Service {
	return &Service{cart: cart, orders: orders, clock: time.Now}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Submit posts the cart as a checkout order. The session must be
// authenticated: either a staff member is assisting, or self-checkout mode
// is active under a staff member's credentials. The cart is cleared only
// after the backend accepts the order.
func (s *Service) Submit(ctx context.Context, studentID string, snap session.Snapshot) (checkouts.CheckoutOrder, error) {
	if !snap.Authenticated {
		return checkouts.CheckoutOrder{}, shared.ErrNotAuthenticated
	}
	if !ValidStudentID(studentID) {
		return checkouts.CheckoutOrder{}, ErrInvalidStudentID
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return checkouts.CheckoutOrder{}, ErrEmptyCart
	}

	order := checkouts.CheckoutOrder{
		StudentID:    studentID,
		AuthorityID:  snap.Identity.UserID,
		SelfCheckout: snap.SelfCheckout,
		CheckoutDate: checkouts.FormatCheckoutDate(s.clock()),
	}
	for _, line := range lines {
		order.CheckoutItems = append(order.CheckoutItems, checkouts.CheckoutItem{
			ItemID:   line.Item.ItemID,
			Quantity: line.Quantity,
		})
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return checkouts.CheckoutOrder{}, err
	}
	s.cart.Clear()
	return created, nil
}
