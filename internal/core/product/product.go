// Package product defines the catalog fields the client keeps about a product.
package product

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the display snapshot of a catalog product as returned by the API.
type Product struct {
	ID        string           `json:"_id"`
	Name      string           `json:"name"`
	Image     string           `json:"image,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
}

// EffectivePrice returns the sale price when one is set, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// OnSale reports whether the product carries a sale price below its list price.
func (p Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price)
}

// Validate checks the fields required to put a product in a cart or wishlist.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s has a negative price", p.ID)
	}
	if p.SalePrice != nil && p.SalePrice.IsNegative() {
		return fmt.Errorf("product %s has a negative sale price", p.ID)
	}
	return nil
}
