// Package cart defines cart line items and the reducer that keeps them
// consistent. The cart is client-authoritative: nothing here talks to the
// backend.
package cart

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/hay-kot/storefront/internal/core/product"
)

// LineItem is one distinct product in the cart. Prices are a snapshot taken
// when the product was first added.
type LineItem struct {
	ProductID       string            `json:"productId"`
	Name            string            `json:"name"`
	Image           string            `json:"image,omitempty"`
	UnitPrice       decimal.Decimal   `json:"unitPrice"`
	SalePrice       *decimal.Decimal  `json:"salePrice,omitempty"`
	Quantity        int               `json:"quantity"`
	SelectedVariant map[string]string `json:"selectedVariant,omitempty"`
}

// Product returns the product snapshot the line was created from.
func (li LineItem) Product() product.Product {
	return product.Product{
		ID:        li.ProductID,
		Name:      li.Name,
		Image:     li.Image,
		Price:     li.UnitPrice,
		SalePrice: li.SalePrice,
	}
}

// Price returns the price charged per unit.
func (li LineItem) Price() decimal.Decimal {
	return li.Product().EffectivePrice()
}

// Subtotal returns Price() * Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) clone() LineItem {
	out := li
	if li.SalePrice != nil {
		sp := *li.SalePrice
		out.SalePrice = &sp
	}
	if li.SelectedVariant != nil {
		out.SelectedVariant = maps.Clone(li.SelectedVariant)
	}
	return out
}

// Cart is an ordered list of line items with at most one item per product ID.
type Cart struct {
	Items []LineItem `json:"items"`
}

// New returns a cart holding copies of items. Items with a quantity below one
// are dropped and duplicate product IDs are merged, so a cart built from
// hand-edited or stale data still satisfies the one-line-per-product rule.
func New(items []LineItem) Cart {
	var c Cart
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := c.index(it.ProductID); i >= 0 {
			c.Items[i].Quantity += it.Quantity
			continue
		}
		c.Items = append(c.Items, it.clone())
	}
	return c
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	out := Cart{Items: make([]LineItem, len(c.Items))}
	for i, it := range c.Items {
		out.Items[i] = it.clone()
	}
	return out
}

// Add merges quantity into the line for p.ID, or appends a new line carrying
// a snapshot of p. A quantity below one counts as one. When the line already
// exists its variant and prices are left untouched.
func (c *Cart) Add(p product.Product, quantity int, variant map[string]string) {
	if quantity < 1 {
		quantity = 1
	}

	if i := c.index(p.ID); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}

	li := LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		UnitPrice: p.Price,
		Quantity:  quantity,
	}
	if p.SalePrice != nil {
		sp := *p.SalePrice
		li.SalePrice = &sp
	}
	if len(variant) > 0 {
		li.SelectedVariant = maps.Clone(variant)
	}

	c.Items = append(c.Items, li)
}

// Remove deletes the line for productID. It reports whether a line was removed.
func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// SetQuantity replaces the quantity of the line for productID. A quantity
// below one removes the line. It reports whether a line was found.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if quantity < 1 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.Items = nil
}

// Find returns the line for productID.
func (c Cart) Find(productID string) (LineItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].clone(), true
	}
	return LineItem{}, false
}

// Total sums Subtotal over every line.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count sums the quantities of every line.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) index(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
