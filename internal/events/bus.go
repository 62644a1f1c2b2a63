// Package events provides in-process domain event fan-out and the
// websocket hub that pushes events to connected agents.
package events

import (
	"sync"
)

// Event types published by the engine.
const (
	TypeMessageCreated = "message.created"
	TypeTicketCreated  = "ticket.created"
)

// Event is a domain event scoped to a tenant.
type Event struct {
	Type     string `json:"type"`
	TenantID uint   `json:"tenant_id"`
	Payload  any    `json:"payload"`
}

// Bus is a non-blocking in-process publish/subscribe fan-out. Slow
// subscribers drop events rather than stalling publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber. The returned cancel function removes
// the subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
