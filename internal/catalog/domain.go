package catalog

import "errors"

// Item mirrors the pantry backend's item payload.
type Item struct {
	ItemID          int64   `json:"itemId"`
	ItemName        string  `json:"itemName"`
	ItemDescription string  `json:"itemDescription"`
	NutritionFacts  string  `json:"nutritionFacts"`
	PicturePath     string  `json:"picturePath"`
	Category        string  `json:"category"`
	CurrentCount    int     `json:"currentCount"`
	ItemLimit       int     `json:"itemLimit"`
	PricePerUnit    float64 `json:"pricePerUnit"`
}

// InStock reports whether the item can currently be checked out.
func (i Item) InStock() bool {
	return i.CurrentCount > 0
}

// Categories lists the storefront's fixed category pages.
var Categories = []string{
	"American",
	"Asian",
	"Bread",
	"Frozen",
	"Indian",
	"Meat",
	"Mexican",
	"Pantry",
	"Produce",
}

// ErrUnknownCategory rejects category paths outside the fixed set.
var ErrUnknownCategory = errors.New("catalog: unknown category")

// KnownCategory reports whether name is one of the storefront categories.
func KnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
