// internal/events/bus.go
package events

import (
	"sync"

	"go.uber.org/zap"

	"iot-hub/internal/model"
)

// Handler receives one event. Handlers are invoked synchronously from the
// publishing goroutine, in subscription order; slow handlers delay the
// discovery loop, so anything expensive should hand off to its own goroutine.
type Handler func(event model.Event)

// Subscription is a handle for one registered handler
type Subscription struct {
	id  uint64
	bus *Bus
}

// Unsubscribe removes the handler from the bus
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s.id)
}

// Bus distributes discovery events to subscribers
type Bus struct {
	mu       sync.RWMutex
	handlers []entry
	nextID   uint64
	logger   *zap.Logger
}

type entry struct {
	id      uint64
	handler Handler
}

// NewBus creates an event bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger.With(zap.String("component", "event-bus")),
	}
}

// Subscribe registers a handler for all events
func (b *Bus) Subscribe(handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers = append(b.handlers, entry{id: b.nextID, handler: handler})
	return &Subscription{id: b.nextID, bus: b}
}

// Publish delivers an event to every subscriber, in subscription order.
// A panicking handler is logged and skipped; it never takes down the
// publishing goroutine.
func (b *Bus) Publish(event model.Event) {
	b.mu.RLock()
	handlers := make([]entry, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, e := range handlers {
		b.dispatch(e, event)
	}
}

func (b *Bus) dispatch(e entry, event model.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.Uint64("subscription_id", e.id),
				zap.String("event_type", string(event.Type)),
				zap.Any("panic", r),
			)
		}
	}()
	e.handler(event)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.handlers {
		if e.id == id {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}
