package checkouts

import (
	"time"

	"github.com/retriever-essentials/pantry-web/internal/catalog"
)

// checkoutDateLayout matches the backend's LocalDateTime serialization.
const checkoutDateLayout = "2006-01-02T15:04:05"

// CheckoutItem is one line of a checkout order.
type CheckoutItem struct {
	CheckoutItemID  int64         `json:"checkoutItemId"`
	CheckoutOrderID int64         `json:"checkoutOrderId"`
	ItemID          int64         `json:"itemId"`
	Quantity        int           `json:"quantity"`
	Item            *catalog.Item `json:"item,omitempty"`
}

// CheckoutOrder is a completed pantry visit.
type CheckoutOrder struct {
	CheckoutOrderID int64          `json:"checkoutOrderId"`
	StudentID       string         `json:"studentId"`
	AuthorityID     int64          `json:"authorityId,omitempty"`
	SelfCheckout    bool           `json:"selfCheckout"`
	CheckoutDate    string         `json:"checkoutDate"`
	CheckoutItems   []CheckoutItem `json:"checkoutItems,omitempty"`
}

// Date parses the backend's checkout timestamp; zero time when absent.
func (o CheckoutOrder) Date() time.Time {
	t, err := time.Parse(checkoutDateLayout, o.CheckoutDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatCheckoutDate renders a timestamp the way the backend expects.
func FormatCheckoutDate(t time.Time) string {
	return t.Format(checkoutDateLayout)
}

// BusySlot is one cell of the busiest-times histogram.
type BusySlot struct {
	Day            string `json:"day"`
	Hour           int    `json:"hour"`
	TotalCheckouts int    `json:"total_checkouts"`
}

// PopularCategory aggregates checkout counts per catalog category.
type PopularCategory struct {
	Category      string `json:"category"`
	TimesIncluded int    `json:"timesIncluded"`
}

// PopularItem aggregates checkout counts per item.
type PopularItem struct {
	ItemID        int64  `json:"itemId"`
	ItemName      string `json:"itemName"`
	TimesIncluded int    `json:"timesIncluded"`
}
