package event

import (
	"context"
	"sync"
)

// HandlerFunc consumes a published event.
type HandlerFunc func(ctx context.Context, e Event)

// Dispatcher is an in-process Publisher that routes events to handlers
// registered per variant tag. It replaces dynamic type-keyed dispatch with
// an explicit registration table.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Type][]HandlerFunc
	catchAll []HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type][]HandlerFunc)}
}

// Register subscribes a handler to one event variant.
func (d *Dispatcher) Register(t Type, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

// RegisterAll subscribes a handler to every event variant.
func (d *Dispatcher) RegisterAll(h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catchAll = append(d.catchAll, h)
}

// Publish delivers the event synchronously to all matching handlers.
func (d *Dispatcher) Publish(ctx context.Context, e Event) error {
	d.mu.RLock()
	matched := append([]HandlerFunc(nil), d.handlers[e.EventType()]...)
	matched = append(matched, d.catchAll...)
	d.mu.RUnlock()

	for _, h := range matched {
		h(ctx, e)
	}
	return nil
}
