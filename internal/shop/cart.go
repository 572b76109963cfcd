package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hay-kot/storefront/internal/core/cart"
	"github.com/hay-kot/storefront/internal/core/product"
)

// ErrNotInCart is returned when a quantity update targets a product that is
// not in the cart.
var ErrNotInCart = errors.New("product is not in the cart")

// CartStore holds the cart and writes it through to storage on every
// mutation. The cart is local-only and survives logout.
type CartStore struct {
	mu    sync.RWMutex
	cart  cart.Cart
	store cart.Store
	log   zerolog.Logger
}

// NewCartStore loads the persisted cart. Unreadable data is logged and the
// cart starts empty.
func NewCartStore(ctx context.Context, store cart.Store, log zerolog.Logger) *CartStore {
	c := &CartStore{
		store: store,
		log:   log.With().Str("component", "cart").Logger(),
	}

	items, err := store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("ignoring unreadable cart")
		items = nil
	}
	c.cart = cart.New(items)

	return c
}

// AddItem adds quantity units of p, merging with an existing line for the
// same product. A quantity below one adds a single unit. variant may be nil.
func (c *CartStore) AddItem(ctx context.Context, p product.Product, quantity int, variant map[string]string) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return c.mutate(ctx, func(next *cart.Cart) bool {
		next.Add(p, quantity, variant)
		return true
	})
}

// RemoveItem drops the line for productID. Removing an absent product is a
// no-op.
func (c *CartStore) RemoveItem(ctx context.Context, productID string) error {
	return c.mutate(ctx, func(next *cart.Cart) bool {
		return next.Remove(productID)
	})
}

// UpdateQuantity sets the quantity of an existing line; a quantity below one
// removes it.
func (c *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	found := true
	err := c.mutate(ctx, func(next *cart.Cart) bool {
		found = next.SetQuantity(productID, quantity)
		return found
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotInCart, productID)
	}
	return nil
}

// Clear empties the cart.
func (c *CartStore) Clear(ctx context.Context) error {
	return c.mutate(ctx, func(next *cart.Cart) bool {
		next.Clear()
		return true
	})
}

// mutate applies fn to a copy of the cart, persists the copy, then swaps it
// in. fn returns false when nothing changed. A failed save leaves the
// in-memory cart untouched.
func (c *CartStore) mutate(ctx context.Context, fn func(next *cart.Cart) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cart.Clone()
	if !fn(&next) {
		return nil
	}

	if err := c.store.Save(ctx, next.Items); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	c.cart = next
	c.log.Debug().Int("lines", len(next.Items)).Int("units", next.Count()).Msg("cart saved")
	return nil
}

// Items returns a copy of the cart lines in insertion order.
func (c *CartStore) Items() []cart.LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := c.cart.Clone().Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return items
}

// Find returns the line for productID.
func (c *CartStore) Find(productID string) (cart.LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Find(productID)
}

// Count returns the total number of units.
func (c *CartStore) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Count()
}

// Total returns sum((salePrice ?? price) * quantity), computed on each call.
func (c *CartStore) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Total()
}
