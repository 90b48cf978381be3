package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handler consumes one event payload.
type Handler func(payload any)

// Bus is an in-process notifier with at most one subscriber per event
// name. Subscribing twice to the same name replaces the earlier handler,
// so ownership of an event stays unambiguous.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   zerolog.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Subscribe registers handler for event, replacing any previous one.
func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.handlers[event]; ok {
		b.logger.Warn().Str("event", event).Msg("replacing event subscriber")
	}
	b.handlers[event] = handler
}

// Notify delivers payload to the event's subscriber, if any. Delivery is
// synchronous; handlers must not block.
func (b *Bus) Notify(event string, payload any) {
	b.mu.RLock()
	handler, ok := b.handlers[event]
	b.mu.RUnlock()

	if !ok {
		b.logger.Debug().Str("event", event).Msg("event without subscriber dropped")
		return
	}
	handler(payload)
}
