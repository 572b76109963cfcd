package jsonfile

import (
	"context"
	"errors"
	"sync"

	"github.com/hay-kot/storefront/internal/core/cart"
)

// cartFile is the root JSON structure stored on disk.
type cartFile struct {
	Items []cart.LineItem `json:"items"`
}

// CartStore implements cart.Store using a JSON file for persistence.
type CartStore struct {
	file file
	mu   sync.RWMutex
}

// NewCartStore creates a new JSON file cart store at the given path.
func NewCartStore(path string) *CartStore {
	return &CartStore{file: file{path: path}}
}

// Path returns the location of the cart file.
func (s *CartStore) Path() string {
	return s.file.path
}

// Load returns the persisted line items, or an empty list if the file
// doesn't exist.
func (s *CartStore) Load(ctx context.Context) ([]cart.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f cartFile
	err := s.file.withSharedLock(func() error {
		return s.file.readJSON(&f)
	})
	if errors.Is(err, errEmpty) {
		return []cart.LineItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	if f.Items == nil {
		f.Items = []cart.LineItem{}
	}
	return f.Items, nil
}

// Save replaces the persisted line items.
func (s *CartStore) Save(ctx context.Context, items []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []cart.LineItem{}
	}

	return s.file.withExclusiveLock(func() error {
		return s.file.writeJSON(cartFile{Items: items}, 0o644)
	})
}

var _ cart.Store = (*CartStore)(nil)
