package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Dispatcher fans events out to subscribed handlers. Dispatch is
// synchronous; a failing handler is logged and does not stop the rest.
type Dispatcher struct {
	log *zap.Logger

	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		log:      log.Named("events.dispatcher"),
		handlers: make(map[Kind][]Handler),
	}
}

// Subscribe registers a handler for the event kind.
func (d *Dispatcher) Subscribe(kind Kind, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// Dispatch runs every handler subscribed to the event's kind in
// registration order. Handler errors are collected into the returned
// slice after all handlers have run.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) []error {
	d.mu.RLock()
	handlers := d.handlers[event.Kind]
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.log.Warn("event handler failed",
				zap.String("kind", string(event.Kind)),
				zap.String("event", event.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errs
}
