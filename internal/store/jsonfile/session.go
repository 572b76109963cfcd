package jsonfile

import (
	"context"
	"errors"
	"sync"

	"github.com/hay-kot/storefront/internal/core/session"
)

// SessionStore implements session.Store using a JSON file for persistence.
// The file holds a bearer token, so it is written with owner-only permissions.
type SessionStore struct {
	file file
	mu   sync.RWMutex
}

// NewSessionStore creates a new JSON file session store at the given path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{file: file{path: path}}
}

// Path returns the location of the session file.
func (s *SessionStore) Path() string {
	return s.file.path
}

// Load returns the persisted session. Returns session.ErrNotFound if the
// file is missing or empty; a corrupt file returns a parse error.
func (s *SessionStore) Load(ctx context.Context) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess session.Session
	err := s.file.withSharedLock(func() error {
		return s.file.readJSON(&sess)
	})
	if errors.Is(err, errEmpty) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, err
	}

	return sess, nil
}

// Save persists sess, replacing any previous session.
func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.file.withExclusiveLock(func() error {
		return s.file.writeJSON(sess, 0o600)
	})
}

// Clear removes the session file.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.file.withExclusiveLock(s.file.remove)
}

var _ session.Store = (*SessionStore)(nil)
