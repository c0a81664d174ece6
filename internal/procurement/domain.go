package procurement

import (
	"time"

	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/checkouts"
)

// Vendor is a supplier the pantry restocks from.
type Vendor struct {
	VendorID     int64  `json:"vendorId"`
	VendorName   string `json:"vendorName"`
	PhoneNumber  string `json:"phoneNumber"`
	ContactEmail string `json:"contactEmail"`
}

// PurchaseItem is a single line on a purchase order.
type PurchaseItem struct {
	PurchaseItemID int64         `json:"purchaseItemId"`
	PurchaseID     int64         `json:"purchaseId,omitempty"`
	ItemID         int64         `json:"itemId,omitempty"`
	Quantity       int           `json:"quantity"`
	Item           *catalog.Item `json:"item,omitempty"`
}

// PurchaseOrder is a restock order placed with a vendor by an admin.
type PurchaseOrder struct {
	PurchaseID    int64          `json:"purchaseId"`
	AdminID       int64          `json:"adminId"`
	VendorID      int64          `json:"vendorId"`
	PurchaseDate  string         `json:"purchaseDate"`
	Vendor        *Vendor        `json:"vendor,omitempty"`
	PurchaseItems []PurchaseItem `json:"purchaseItems,omitempty"`
}

// Date parses the backend's timestamp. A malformed value reads as zero.
func (o PurchaseOrder) Date() time.Time {
	ts, err := time.Parse("2006-01-02T15:04:05", o.PurchaseDate)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// FormatPurchaseDate renders a timestamp the way the backend expects.
func FormatPurchaseDate(ts time.Time) string {
	return checkouts.FormatCheckoutDate(ts)
}
