package shop

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/storefront/internal/core/cart"
	"github.com/hay-kot/storefront/internal/core/events"
	"github.com/hay-kot/storefront/internal/core/product"
	"github.com/hay-kot/storefront/internal/core/session"
	"github.com/hay-kot/storefront/internal/core/wishlist"
)

const testPassword = "secret123"

var farFuture = time.Now().Add(24 * time.Hour)

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func fakeProduct(price string) product.Product {
	return product.Product{
		ID:    gofakeit.UUID(),
		Name:  gofakeit.ProductName(),
		Price: decimal.RequireFromString(price),
	}
}

// backend is a fake storefront API.
type backend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	calls    []string
	banned   bool
	token    string
	wishlist []wishlist.Entry
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{t: t, token: makeToken(t, time.Now().Add(time.Hour))}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", b.login)
	mux.HandleFunc("POST /api/users/register", b.register)
	mux.HandleFunc("GET /api/wishlist", b.authorized(b.listWishlist))
	mux.HandleFunc("POST /api/wishlist/{id}", b.authorized(b.addWishlist))
	mux.HandleFunc("DELETE /api/wishlist/{id}", b.authorized(b.removeWishlist))

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.server.Close)

	return b
}

func (b *backend) URL() string {
	return b.server.URL + "/api"
}

func (b *backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

func (b *backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *backend) SetBanned(banned bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banned = banned
}

func (b *backend) SetWishlist(entries ...wishlist.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wishlist = entries
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (b *backend) sessionFor(name, email string) session.Session {
	return session.Session{ID: "u1", Name: name, Email: email, Token: b.token}
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad body")
		return
	}

	b.mu.Lock()
	banned := b.banned
	b.mu.Unlock()

	switch {
	case banned:
		writeMessage(w, http.StatusForbidden, "User is banned")
	case creds.Password != testPassword:
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		writeJSON(w, http.StatusOK, b.sessionFor("Ada Lovelace", creds.Email))
	}
}

func (b *backend) register(w http.ResponseWriter, r *http.Request) {
	var reg session.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad body")
		return
	}

	if reg.Email == "taken@example.com" {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	writeJSON(w, http.StatusCreated, b.sessionFor(reg.Name, reg.Email))
}

func (b *backend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		banned := b.banned
		token := b.token
		b.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+token {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		if banned {
			writeMessage(w, http.StatusForbidden, "User is banned")
			return
		}
		next(w, r)
	}
}

func (b *backend) listWishlist(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.wishlistLocked())
}

func (b *backend) addWishlist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	if !slices.ContainsFunc(b.wishlist, func(e wishlist.Entry) bool { return e.ProductID == id }) {
		b.wishlist = append(b.wishlist, wishlist.Entry{ProductID: id, Name: "Product " + id, Price: decimal.NewFromInt(10)})
	}
	writeJSON(w, http.StatusOK, b.wishlistLocked())
}

func (b *backend) removeWishlist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	b.wishlist = slices.DeleteFunc(b.wishlist, func(e wishlist.Entry) bool { return e.ProductID == id })
	writeJSON(w, http.StatusOK, b.wishlistLocked())
}

func (b *backend) wishlistLocked() []wishlist.Entry {
	if b.wishlist == nil {
		return []wishlist.Entry{}
	}
	return b.wishlist
}

// memorySessionStore is an in-memory session.Store.
type memorySessionStore struct {
	mu      sync.Mutex
	sess    *session.Session
	loadErr error
	saveErr error
	clears  int
}

func (m *memorySessionStore) Load(context.Context) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return session.Session{}, m.loadErr
	}
	if m.sess == nil {
		return session.Session{}, session.ErrNotFound
	}
	return *m.sess, nil
}

func (m *memorySessionStore) Save(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sess = &s
	return nil
}

func (m *memorySessionStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	m.loadErr = nil
	m.clears++
	return nil
}

func (m *memorySessionStore) Persisted() (session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return session.Session{}, false
	}
	return *m.sess, true
}

// memoryCartStore is an in-memory cart.Store.
type memoryCartStore struct {
	mu      sync.Mutex
	items   []cart.LineItem
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryCartStore) Load(context.Context) ([]cart.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items, m.loadErr
}

func (m *memoryCartStore) Save(_ context.Context, items []cart.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = cart.New(items).Items
	m.saves++
	return nil
}

func (m *memoryCartStore) Saved() []cart.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cart.New(m.items).Items
}

// recordingNavigator captures navigation targets.
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(_ context.Context, route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.routes)
}

type fixture struct {
	backend  *backend
	sessions *memorySessionStore
	carts    *memoryCartStore
	nav      *recordingNavigator
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		backend:  newBackend(t),
		sessions: &memorySessionStore{},
		carts:    &memoryCartStore{},
		nav:      &recordingNavigator{},
	}
	f.start(t)
	return f
}

// start builds the service against the fixture's stores, as a new process
// would.
func (f *fixture) start(t *testing.T) {
	t.Helper()

	f.svc = New(context.Background(), Config{
		BaseURL:      f.backend.URL(),
		BannedRoute:  "/banned",
		SessionStore: f.sessions,
		CartStore:    f.carts,
		Navigator:    f.nav,
		Logger:       zerolog.Nop(),
	})
	t.Cleanup(f.svc.Close)
}

func (f *fixture) login(t *testing.T) session.Session {
	t.Helper()
	sess, err := f.svc.Sessions.Login(context.Background(), "ada@example.com", testPassword)
	require.NoError(t, err)
	return sess
}

// funcDoer adapts a function to Doer.
type funcDoer func(ctx context.Context, method, path string, body, out any) error

func (f funcDoer) Do(ctx context.Context, method, path string, body, out any) error {
	return f(ctx, method, path, body, out)
}

func newTestBus() *events.Bus {
	return events.NewBus(zerolog.Nop())
}
