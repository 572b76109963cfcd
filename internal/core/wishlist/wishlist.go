// Package wishlist defines the server-authoritative wishlist state.
package wishlist

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrAuthRequired is returned when a wishlist mutation is attempted without a
// session. No request is sent in that case.
var ErrAuthRequired = errors.New("login required to use the wishlist")

// Entry is a saved product reference as returned by the wishlist endpoints.
type Entry struct {
	ProductID string          `json:"_id"`
	Name      string          `json:"name,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
}

// List is an immutable snapshot of the wishlist with O(1) membership checks.
// A List is replaced wholesale, never edited in place.
type List struct {
	entries []Entry
	index   map[string]struct{}
}

// NewList builds a List from a server response. Entries without a product ID
// are skipped and the first occurrence of a duplicate ID wins.
func NewList(entries []Entry) List {
	l := List{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		if _, ok := l.index[e.ProductID]; ok {
			continue
		}
		l.index[e.ProductID] = struct{}{}
		l.entries = append(l.entries, e)
	}
	return l
}

// Contains reports whether productID is on the list.
func (l List) Contains(productID string) bool {
	_, ok := l.index[productID]
	return ok
}

// Entries returns a copy of the entries in server order.
func (l List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l List) Len() int {
	return len(l.entries)
}
