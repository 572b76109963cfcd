package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/storefront/internal/core/cart"
	"github.com/hay-kot/storefront/internal/core/session"
)

// StorageCheck verifies that the saved session and cart can be read.
type StorageCheck struct {
	sessions session.Store
	carts    cart.Store
	fix      bool
	now      func() time.Time
}

// NewStorageCheck creates a new local storage check.
// If fix is true, unreadable or stale files are reset.
func NewStorageCheck(sessions session.Store, carts cart.Store, fix bool) *StorageCheck {
	return &StorageCheck{
		sessions: sessions,
		carts:    carts,
		fix:      fix,
		now:      time.Now,
	}
}

func (c *StorageCheck) Name() string {
	return "Local Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	return Result{
		Name: c.Name(),
		Items: []Item{
			c.checkSession(ctx),
			c.checkCart(ctx),
		},
	}
}

func (c *StorageCheck) checkSession(ctx context.Context) Item {
	item := Item{Label: "Session"}

	sess, err := c.sessions.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNotFound):
		item.Status = StatusPass
		item.Detail = "not signed in"
		return item
	case err != nil:
		item.Status = StatusFail
		item.Detail = err.Error()
		item.Fixable = true
		return c.resetSession(ctx, item)
	}

	if err := sess.ValidateToken(c.now()); err != nil {
		item.Status = StatusWarn
		item.Detail = err.Error() + "; it will be discarded on next use"
		item.Fixable = true
		return c.resetSession(ctx, item)
	}

	item.Status = StatusPass
	item.Detail = "signed in as " + sess.Email
	if exp, ok := sess.ExpiresAt(); ok {
		item.Detail += ", expires " + exp.Format(time.RFC3339)
	}
	return item
}

func (c *StorageCheck) resetSession(ctx context.Context, item Item) Item {
	if !c.fix {
		return item
	}

	if err := c.sessions.Clear(ctx); err != nil {
		item.Detail = fmt.Sprintf("%s (fix failed: %v)", item.Detail, err)
		return item
	}

	item.Status = StatusFixed
	item.Detail = "removed saved session"
	return item
}

func (c *StorageCheck) checkCart(ctx context.Context) Item {
	item := Item{Label: "Cart"}

	items, err := c.carts.Load(ctx)
	if err != nil {
		item.Status = StatusFail
		item.Detail = err.Error()
		item.Fixable = true

		if c.fix {
			if err := c.carts.Save(ctx, nil); err != nil {
				item.Detail = fmt.Sprintf("%s (fix failed: %v)", item.Detail, err)
				return item
			}
			item.Status = StatusFixed
			item.Detail = "reset unreadable cart"
		}
		return item
	}

	normalized := cart.New(items)
	item.Status = StatusPass
	item.Detail = fmt.Sprintf("%d line(s), %d unit(s)", len(normalized.Items), normalized.Count())
	if len(normalized.Items) != len(items) {
		item.Status = StatusWarn
		item.Detail += fmt.Sprintf("; %d duplicate or empty line(s) will be merged", len(items)-len(normalized.Items))
	}
	return item
}
