// Package shop wires the session, cart, and wishlist stores to the backend
// API and to each other.
package shop

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hay-kot/storefront/internal/api"
	"github.com/hay-kot/storefront/internal/core/cart"
	"github.com/hay-kot/storefront/internal/core/config"
	"github.com/hay-kot/storefront/internal/core/events"
	"github.com/hay-kot/storefront/internal/core/session"
)

// Navigator moves the user interface to a route.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) { f(ctx, route) }

// Config holds the dependencies of a Service.
type Config struct {
	BaseURL      string
	BannedRoute  string
	SessionStore session.Store
	CartStore    cart.Store
	// Navigator receives BannedRoute after a ban. Optional.
	Navigator  Navigator
	Logger     zerolog.Logger
	APIOptions []api.Option
}

// Service owns the stores and the event bus that connects them.
type Service struct {
	Sessions *SessionStore
	Cart     *CartStore
	Wishlist *WishlistStore
	API      *api.Client

	bus         *events.Bus
	unsubscribe func()
}

// New builds the stores, restoring persisted state. A ban detected on any
// request ends the session and then navigates to cfg.BannedRoute.
func New(ctx context.Context, cfg Config) *Service {
	if cfg.BannedRoute == "" {
		cfg.BannedRoute = config.DefaultBannedRoute
	}

	bus := events.NewBus(cfg.Logger.With().Str("component", "events").Logger())

	var sessions *SessionStore
	opts := append([]api.Option{
		api.WithLogger(cfg.Logger),
		api.WithPublisher(bus),
		api.WithTokenSource(api.TokenFunc(func(context.Context) string {
			return sessions.Token()
		})),
	}, cfg.APIOptions...)
	client := api.New(cfg.BaseURL, opts...)

	// The session store subscribes to bans first, so the session is gone
	// before navigation happens.
	sessions = NewSessionStore(ctx, client, cfg.SessionStore, bus, cfg.Logger)

	svc := &Service{
		Sessions: sessions,
		Cart:     NewCartStore(ctx, cfg.CartStore, cfg.Logger),
		Wishlist: NewWishlistStore(client, sessions, bus, cfg.Logger),
		API:      client,
		bus:      bus,
	}

	route := cfg.BannedRoute
	nav := cfg.Navigator
	svc.unsubscribe = bus.Subscribe(events.TypeBanSignal, func(ctx context.Context, _ events.Event) error {
		if nav != nil {
			nav.Navigate(ctx, route)
		}
		return nil
	})

	return svc
}

// Close detaches every store from the bus.
func (s *Service) Close() {
	s.unsubscribe()
	s.Wishlist.Close()
	s.Sessions.Close()
}
