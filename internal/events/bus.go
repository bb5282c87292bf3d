package events

import (
	"sync"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Handler receives events synchronously on the publishing goroutine.
type Handler func(event *models.Event)

type EventBus struct {
	subscribers map[models.EventType][]Handler
	all         []Handler
	mu          sync.RWMutex
	closed      bool
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[models.EventType][]Handler),
	}
}

func (b *EventBus) Subscribe(eventType models.EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], h)
}

func (b *EventBus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, h)
}

// Publish delivers event to every matching handler in subscription order.
// Handlers for a specific type run before catch-all handlers.
func (b *EventBus) Publish(event *models.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, 0, len(b.subscribers[event.Type])+len(b.all))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = make(map[models.EventType][]Handler)
	b.all = nil
}
