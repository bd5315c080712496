// Package events provides the in-process domain event dispatcher the stores
// publish their change notifications on.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/shared"
)

// Dispatcher delivers domain events synchronously to registered handlers
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	log      *zap.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		log:      log.Named("events"),
	}
}

// Dispatch dispatches an event to the handlers registered for its name and
// to the wildcard handlers. Handler errors are logged; the remaining
// handlers still run.
func (d *Dispatcher) Dispatch(ctx context.Context, event shared.DomainEvent) error {
	name := event.EventName()

	d.mu.RLock()
	handlers := make([]shared.EventHandler, 0, len(d.handlers[name])+len(d.handlers[shared.AllEvents]))
	handlers = append(handlers, d.handlers[name]...)
	handlers = append(handlers, d.handlers[shared.AllEvents]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.log.Debug("No handlers registered for event", zap.String("event", name))
		return nil
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.log.Error("Failed to handle event",
				zap.String("event", name),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Register registers an event handler
func (d *Dispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
	d.mu.Unlock()

	d.log.Debug("Registered event handler", zap.String("event", eventName))
}

var _ shared.EventDispatcher = (*Dispatcher)(nil)
