package inventorylog

import (
	"time"

	"github.com/retriever-essentials/pantry-web/internal/checkouts"
)

// Entry records a manual stock adjustment outside the checkout flow.
type Entry struct {
	LogID          int64  `json:"logId"`
	AuthorityID    int64  `json:"authorityId,omitempty"`
	ItemID         int64  `json:"itemId"`
	QuantityChange int    `json:"quantityChange"`
	Reason         string `json:"reason"`
	TimeStamp      string `json:"timeStamp"`
	AuthorityEmail string `json:"authorityEmail,omitempty"`
	ItemName       string `json:"itemName,omitempty"`
}

// Time parses the backend's timestamp. A malformed value reads as zero.
func (e Entry) Time() time.Time {
	ts, err := time.Parse("2006-01-02T15:04:05", e.TimeStamp)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// FormatTimeStamp renders a timestamp the way the backend expects.
func FormatTimeStamp(ts time.Time) string {
	return checkouts.FormatCheckoutDate(ts)
}
