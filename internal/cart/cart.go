// Package cart holds the kiosk's local cart and the checkout submission
// flow. Cart math is plain list mutation; the interesting rule is the
// per-item quantity clamp and the authentication gate on submission.
package cart

import (
	"sync"

	"github.com/retriever-essentials/pantry-web/internal/catalog"
)

// Line is one item in the cart.
type Line struct {
	Item     catalog.Item
	Quantity int
}

// Cart is the process-wide cart for the kiosk. Like the session it is
// shared across requests, so mutations are serialized.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// New constructs an empty Cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one more of item in the cart, clamped to the item's per-visit
// limit. It returns the resulting quantity.
func (c *Cart) Add(item catalog.Item) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	limit := itemLimit(item)
	for i := range c.lines {
		if c.lines[i].Item.ItemID == item.ItemID {
			if c.lines[i].Quantity < limit {
				c.lines[i].Quantity++
			}
			return c.lines[i].Quantity
		}
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
	return 1
}

// SetQuantity updates a line's quantity, clamped to [1, limit]. A quantity
// of zero or less removes the line.
func (c *Cart) SetQuantity(itemID int64, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Item.ItemID != itemID {
			continue
		}
		if qty <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
		if limit := itemLimit(c.lines[i].Item); qty > limit {
			qty = limit
		}
		c.lines[i].Quantity = qty
		return
	}
}

// Remove deletes a line.
func (c *Cart) Remove(itemID int64) {
	c.SetQuantity(itemID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Count returns the total number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func itemLimit(item catalog.Item) int {
	if item.ItemLimit < 1 {
		return 1
	}
	return item.ItemLimit
}
