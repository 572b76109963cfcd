package cart

import "context"

// Store defines durable persistence for cart line items.
type Store interface {
	// Load returns the persisted line items. A missing file yields an empty
	// list; unreadable or corrupt data yields an error the caller may ignore.
	Load(ctx context.Context) ([]LineItem, error)
	// Save replaces the persisted line items with items.
	Save(ctx context.Context, items []LineItem) error
}
