// Package events provides the in-process event bus that carries cross-store
// signals, such as a ban detected by the API gateway, to the stores that
// react to them.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Type identifies an event kind.
type Type string

const (
	TypeBanSignal      Type = "ban_signal"
	TypeSessionChanged Type = "session_changed"
)

// Event is anything published on the bus.
type Event interface {
	Type() Type
}

// BanSignal is emitted when the server answers 403 with a ban message.
type BanSignal struct {
	Method  string
	Path    string
	Message string
}

func (BanSignal) Type() Type { return TypeBanSignal }

// SessionChanged is emitted after the session identity changes (login,
// register, logout). Generation increases on every change.
type SessionChanged struct {
	PreviousID string
	CurrentID  string
	Generation uint64
}

func (SessionChanged) Type() Type { return TypeSessionChanged }

// LoggedOut reports whether the change ended with no session.
func (e SessionChanged) LoggedOut() bool {
	return e.CurrentID == ""
}

// Handler reacts to an event. Returned errors are logged, never propagated to
// the publisher.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

type subscription struct {
	id      uint64
	handler Handler
}

// Bus dispatches events synchronously to subscribers in subscription order.
// Handlers may publish further events; the bus holds no lock while a handler
// runs.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]subscription
	nextID   uint64
	log      zerolog.Logger
}

// NewBus creates an empty bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
		log:      log,
	}
}

// Subscribe registers h for events of type t and returns a function that
// removes the subscription. The returned function is safe to call twice.
func (b *Bus) Subscribe(t Type, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})

	b.log.Debug().Str("event_type", string(t)).Uint64("subscription", id).Msg("handler subscribed")

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(t, id) })
	}
}

func (b *Bus) unsubscribe(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[t]
	for i, s := range subs {
		if s.id == id {
			// copy so in-flight Publish calls keep iterating their own slice
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			b.handlers[t] = next
			break
		}
	}

	b.log.Debug().Str("event_type", string(t)).Uint64("subscription", id).Msg("handler unsubscribed")
}

// Publish dispatches every event to its subscribers before returning.
func (b *Bus) Publish(ctx context.Context, events ...Event) {
	for _, e := range events {
		b.mu.RLock()
		subs := b.handlers[e.Type()]
		b.mu.RUnlock()

		for _, s := range subs {
			if err := b.dispatch(ctx, s.handler, e); err != nil {
				b.log.Error().
					Err(err).
					Str("event_type", string(e.Type())).
					Uint64("subscription", s.id).
					Msg("handler failed to process event")
			}
		}
	}
}

// SubscriberCount returns the number of handlers registered for t.
func (b *Bus) SubscriberCount(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h(ctx, e)
}

var _ Publisher = (*Bus)(nil)
