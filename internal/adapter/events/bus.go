// Package events is a small in-process dispatcher for chat message events.
package events

import (
	"sync"

	"github.com/EmerJK/emertxthn/internal/domain"
)

// Event names delivered by the host.
type Event string

const (
	MessageReceived Event = "message_received"
	MessageSent     Event = "message_sent"
	MessageEdited   Event = "message_edited"
)

// Handler processes one message event. Handlers may rewrite the message
// text in place.
type Handler func(msg *domain.Message)

// Bus routes events to subscribed handlers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Event][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Event][]Handler),
	}
}

// Subscribe registers a handler for the event.
func (b *Bus) Subscribe(ev Event, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[ev] = append(b.handlers[ev], h)
}

// Publish invokes all handlers for the event synchronously.
func (b *Bus) Publish(ev Event, msg *domain.Message) {
	b.mu.RLock()
	handlers := b.handlers[ev]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}
