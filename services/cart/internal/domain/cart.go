package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// LineItem is one entry in the cart. Price is in the reference currency.
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
	// Size is the size the shopper picked from Sizes, if any.
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
}

// Subtotal returns price * quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// sameProduct reports whether two entries describe the same product and size.
func (li LineItem) sameProduct(other LineItem) bool {
	return li.ID != "" && li.ID == other.ID && li.Size == other.Size
}

// Cart is the ordered list of line items. Operations never mutate the
// receiver; they return a new Cart.
type Cart []LineItem

// Decode parses a persisted cart blob. A blob that is not a JSON array of
// line items is an error. Quantities below 1 are raised to 1.
func Decode(blob []byte) (Cart, error) {
	var items []LineItem
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("decode cart: not an array")
	}
	for i := range items {
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
	}
	return Cart(items), nil
}

// Encode serializes the cart. An empty cart encodes as [].
func (c Cart) Encode() ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	data, err := json.Marshal([]LineItem(c))
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for i, item := range c {
		item.Sizes = slices.Clone(item.Sizes)
		out[i] = item
	}
	return out
}

// Add merges item into an existing entry with the same product id and size,
// or appends it. A quantity below 1 counts as 1.
func (c Cart) Add(item LineItem) Cart {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	out := c.Clone()
	if i := out.FindItemIndex(item.ID, item.Size); i >= 0 {
		out[i].Quantity += item.Quantity
		return out
	}
	item.Sizes = slices.Clone(item.Sizes)
	return append(out, item)
}

// Remove deletes the entry at index. An out-of-range index returns an
// unchanged copy.
func (c Cart) Remove(index int) Cart {
	out := make(Cart, 0, len(c))
	for i, item := range c.Clone() {
		if i != index {
			out = append(out, item)
		}
	}
	return out
}

// ChangeQuantity sets quantity = max(1, quantity + delta) for the entry at
// index. An out-of-range index returns an unchanged copy.
func (c Cart) ChangeQuantity(index, delta int) Cart {
	out := c.Clone()
	if index < 0 || index >= len(out) {
		return out
	}
	out[index].Quantity = max(1, out[index].Quantity+delta)
	return out
}

// Total returns the sum of price * quantity in the reference currency.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the entry for the given product id and
// size, or -1.
func (c Cart) FindItemIndex(id, size string) int {
	probe := LineItem{ID: id, Size: size}
	for i := range c {
		if c[i].sameProduct(probe) {
			return i
		}
	}
	return -1
}
