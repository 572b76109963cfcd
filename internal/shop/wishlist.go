package shop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/storefront/internal/core/events"
	"github.com/hay-kot/storefront/internal/core/product"
	"github.com/hay-kot/storefront/internal/core/validate"
	"github.com/hay-kot/storefront/internal/core/wishlist"
)

const wishlistPath = "/wishlist"

// WishlistStore mirrors the server's wishlist for the current session.
// Every server response replaces the local list; nothing is merged.
//
// Each list is tagged with the session generation that was current when its
// request was sent. A response that arrives after the session changed is
// dropped, so a slow refresh can't repopulate the list after logout.
type WishlistStore struct {
	mu   sync.RWMutex
	list wishlist.List
	gen  uint64

	api      Doer
	sessions *SessionStore
	log      zerolog.Logger

	unsubscribe func()
}

// NewWishlistStore creates an empty wishlist that refreshes itself whenever
// the session changes. Call Refresh once to load the current session's list.
func NewWishlistStore(doer Doer, sessions *SessionStore, bus *events.Bus, log zerolog.Logger) *WishlistStore {
	w := &WishlistStore{
		list:     wishlist.NewList(nil),
		gen:      sessions.Generation(),
		api:      doer,
		sessions: sessions,
		log:      log.With().Str("component", "wishlist").Logger(),
	}

	w.unsubscribe = bus.Subscribe(events.TypeSessionChanged, w.onSessionChanged)
	return w
}

// Close stops following session changes.
func (w *WishlistStore) Close() {
	w.unsubscribe()
}

// Refresh replaces the list with the server's copy. Without a session the
// list is emptied and no request is sent.
func (w *WishlistStore) Refresh(ctx context.Context) error {
	gen := w.sessions.Generation()
	if _, ok := w.sessions.Current(); !ok {
		w.replace(gen, nil)
		return nil
	}

	var entries []wishlist.Entry
	if err := w.api.Do(ctx, http.MethodGet, wishlistPath, nil, &entries); err != nil {
		return fmt.Errorf("refresh wishlist: %w", err)
	}

	w.replace(gen, entries)
	return nil
}

// Add saves p to the wishlist. Returns wishlist.ErrAuthRequired without a
// session.
func (w *WishlistStore) Add(ctx context.Context, p product.Product) error {
	if err := w.requireSession(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return w.mutate(ctx, http.MethodPost, p.ID)
}

// Remove deletes productID from the wishlist. Returns
// wishlist.ErrAuthRequired without a session.
func (w *WishlistStore) Remove(ctx context.Context, productID string) error {
	return w.mutate(ctx, http.MethodDelete, productID)
}

// Toggle removes p when it is saved and adds it otherwise. It reports
// whether p is saved afterwards.
func (w *WishlistStore) Toggle(ctx context.Context, p product.Product) (bool, error) {
	if w.Contains(p.ID) {
		if err := w.Remove(ctx, p.ID); err != nil {
			return true, err
		}
		return w.Contains(p.ID), nil
	}

	if err := w.Add(ctx, p); err != nil {
		return false, err
	}
	return w.Contains(p.ID), nil
}

func (w *WishlistStore) requireSession() error {
	if _, ok := w.sessions.Current(); !ok {
		return wishlist.ErrAuthRequired
	}
	return nil
}

func (w *WishlistStore) mutate(ctx context.Context, method, productID string) error {
	if err := w.requireSession(); err != nil {
		return err
	}
	if err := validate.ProductID(productID); err != nil {
		return err
	}

	gen := w.sessions.Generation()

	var entries []wishlist.Entry
	path := wishlistPath + "/" + url.PathEscape(productID)
	if err := w.api.Do(ctx, method, path, nil, &entries); err != nil {
		return fmt.Errorf("update wishlist: %w", err)
	}

	w.replace(gen, entries)
	return nil
}

// replace installs entries as the list for session generation gen. Lists
// from an older generation are dropped.
func (w *WishlistStore) replace(gen uint64, entries []wishlist.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.sessions.Generation()
	if gen != current || gen < w.gen {
		w.log.Debug().
			Uint64("response_generation", gen).
			Uint64("session_generation", current).
			Msg("dropping stale wishlist response")
		return
	}

	w.list = wishlist.NewList(entries)
	w.gen = gen
}

// snapshot returns the list if it belongs to the current session, otherwise
// an empty list.
func (w *WishlistStore) snapshot() wishlist.List {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.gen != w.sessions.Generation() {
		return wishlist.NewList(nil)
	}
	return w.list
}

// Contains reports whether productID is saved.
func (w *WishlistStore) Contains(productID string) bool {
	return w.snapshot().Contains(productID)
}

// Items returns a copy of the saved entries in server order.
func (w *WishlistStore) Items() []wishlist.Entry {
	return w.snapshot().Entries()
}

// Len returns the number of saved entries.
func (w *WishlistStore) Len() int {
	return w.snapshot().Len()
}

func (w *WishlistStore) onSessionChanged(ctx context.Context, e events.Event) error {
	changed, _ := e.(events.SessionChanged)
	w.log.Debug().
		Str("previous_id", changed.PreviousID).
		Str("current_id", changed.CurrentID).
		Msg("session changed, refreshing wishlist")

	return w.Refresh(ctx)
}
