package events

import (
	"context"
	"fmt"
	"sync"

	"leadintake_backend/platform/logger"
)

// InMemoryBus is a simple in-process implementation of Bus.
// Asynchronous handlers run in their own goroutine with panic recovery,
// so a misbehaving subscriber cannot take down the publisher.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to all handlers asynchronously.
// Handler errors are logged and do not propagate to the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	for _, handler := range b.handlersFor(event.EventName()) {
		go func(h Handler) {
			defer b.recoverPanic(event.EventName())
			if err := h.Handle(context.WithoutCancel(ctx), event); err != nil {
				b.log.Error("event handler failed",
					"event", event.EventName(),
					"error", err,
				)
			}
		}(handler)
	}
}

// PublishSync dispatches the event and waits for every handler.
// The first handler error aborts the remaining handlers and is returned.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	for _, handler := range b.handlersFor(event.EventName()) {
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("handle %s: %w", event.EventName(), err)
		}
	}
	return nil
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	registered := b.handlers[eventName]
	handlers := make([]Handler, len(registered))
	copy(handlers, registered)
	return handlers
}

func (b *InMemoryBus) recoverPanic(eventName string) {
	if r := recover(); r != nil {
		b.log.Error("event handler panicked",
			"event", eventName,
			"panic", fmt.Sprintf("%v", r),
		)
	}
}
