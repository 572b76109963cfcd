package shop

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/storefront/internal/api"
	"github.com/hay-kot/storefront/internal/core/events"
	"github.com/hay-kot/storefront/internal/core/session"
	"github.com/hay-kot/storefront/internal/core/validate"
)

const (
	loginPath    = "/users/login"
	registerPath = "/users/register"
)

// Doer sends a request to the backend. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// SessionStore owns the current session. It is the only writer of the
// persisted session file and the only publisher of events.SessionChanged.
type SessionStore struct {
	mu         sync.RWMutex
	current    session.Session
	generation uint64

	api   Doer
	store session.Store
	bus   *events.Bus
	log   zerolog.Logger
	now   func() time.Time

	unsubscribe func()
}

// NewSessionStore loads the persisted session. A missing, unreadable, or
// expired session is discarded and the store starts logged out; loading
// never fails.
func NewSessionStore(ctx context.Context, doer Doer, store session.Store, bus *events.Bus, log zerolog.Logger) *SessionStore {
	s := &SessionStore{
		api:   doer,
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
	}

	s.restore(ctx)
	s.unsubscribe = bus.Subscribe(events.TypeBanSignal, s.onBan)

	return s
}

func (s *SessionStore) restore(ctx context.Context) {
	sess, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return
	case err != nil:
		s.log.Warn().Err(err).Msg("discarding unreadable session")
		s.discard(ctx)
		return
	}

	if err := sess.ValidateToken(s.now()); err != nil {
		s.log.Info().Err(err).Str("user_id", sess.ID).Msg("discarding stale session")
		s.discard(ctx)
		return
	}

	s.current = sess
	s.log.Debug().Str("user_id", sess.ID).Msg("session restored")
}

func (s *SessionStore) discard(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

// Close stops listening for ban signals.
func (s *SessionStore) Close() {
	s.unsubscribe()
}

// Login authenticates with email and password and replaces the current
// session. Failures are returned as *session.AuthError.
func (s *SessionStore) Login(ctx context.Context, email, password string) (session.Session, error) {
	creds := session.Credentials{Email: email, Password: password}
	if err := validate.Struct(creds); err != nil {
		return session.Session{}, &session.AuthError{Message: "invalid login details", Cause: err}
	}

	return s.authenticate(ctx, loginPath, creds)
}

// Register creates an account and replaces the current session with it.
// Failures are returned as *session.AuthError.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) (session.Session, error) {
	reg := session.Registration{Name: name, Email: email, Password: password}
	if err := validate.Struct(reg); err != nil {
		return session.Session{}, &session.AuthError{Message: "invalid registration details", Cause: err}
	}

	return s.authenticate(ctx, registerPath, reg)
}

func (s *SessionStore) authenticate(ctx context.Context, path string, body any) (session.Session, error) {
	var sess session.Session
	if err := s.api.Do(ctx, http.MethodPost, path, body, &sess); err != nil {
		authErr := &session.AuthError{Cause: err}

		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			authErr.Message = apiErr.Message
		}
		return session.Session{}, authErr
	}

	if sess.Token == "" {
		return session.Session{}, &session.AuthError{Message: "server returned no token"}
	}

	if err := s.set(ctx, sess); err != nil {
		return session.Session{}, err
	}

	s.log.Info().Str("user_id", sess.ID).Str("path", path).Msg("authenticated")
	return sess, nil
}

// set persists sess, then makes it current and announces the change.
func (s *SessionStore) set(ctx context.Context, sess session.Session) error {
	if err := s.store.Save(ctx, sess); err != nil {
		return &session.AuthError{Message: "could not save session", Cause: err}
	}

	s.mu.Lock()
	prev := s.current.ID
	s.current = sess
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.bus.Publish(ctx, events.SessionChanged{
		PreviousID: prev,
		CurrentID:  sess.ID,
		Generation: gen,
	})
	return nil
}

// Logout clears the session and its persisted copy. Calling Logout without
// a session only makes sure nothing is left on disk.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.current.ID
	hadSession := !s.current.IsZero()
	s.current = session.Session{}
	if hadSession {
		s.generation++
	}
	gen := s.generation
	s.mu.Unlock()

	err := s.store.Clear(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}

	if hadSession {
		s.log.Info().Str("user_id", prev).Msg("logged out")
		s.bus.Publish(ctx, events.SessionChanged{
			PreviousID: prev,
			Generation: gen,
		})
	}

	return err
}

// Current returns a copy of the session and whether one exists.
func (s *SessionStore) Current() (session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, !s.current.IsZero()
}

// Token returns the bearer token, or "" when logged out.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Generation increases every time the session identity changes.
func (s *SessionStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *SessionStore) onBan(ctx context.Context, e events.Event) error {
	ban, _ := e.(events.BanSignal)
	s.log.Warn().
		Str("method", ban.Method).
		Str("path", ban.Path).
		Str("message", ban.Message).
		Msg("ban received, ending session")

	return s.Logout(ctx)
}
