package events

import (
	"context"
	"errors"
	"sync"
)

// Names of change events published after successful writes.
const (
	NotificationCreated = "notification.created"
	MatchUpdated        = "match.updated"
	MatchCreated        = "match.created"
)

type Event struct {
	Name    string
	Payload any
}

type Handler func(context.Context, Event) error

// Bus is a synchronous in-process observer registry. Publish runs every
// handler subscribed to the event name in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Publish delivers e to all handlers. A failing handler does not stop the
// remaining ones; their errors are joined.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[e.Name]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
