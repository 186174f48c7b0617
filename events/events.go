// Package events provides the per-widget publish/subscribe bus carrying
// typed lifecycle and domain events to the host.
package events

import (
	"sync"

	"github.com/quillauth/embedkit/autherrors"
)

// Type enumerates every event name a widget can emit. Payload shape is
// fixed per type: Err only accompanies TypeError, Step only TypeStepChange.
type Type string

const (
	TypeReady      Type = "ready"
	TypeShow       Type = "show"
	TypeHide       Type = "hide"
	TypeDestroy    Type = "destroy"
	TypeError      Type = "error"
	TypeSuccess    Type = "success"
	TypeStepChange Type = "step_change"

	TypeEmailVerified    Type = "email_verified"
	TypePhraseCreated    Type = "phrase_created"
	TypeRecoveryComplete Type = "recovery_complete"
	TypeStatusRefreshed  Type = "status_refreshed"
)

// Event is one notification delivered to subscribers.
type Event struct {
	Type     Type
	WidgetID string
	Step     string            // set for step_change
	Err      *autherrors.Error // set for error
	Data     map[string]any    // domain payload, fixed per type
}

// Handler receives events synchronously, in subscription order.
type Handler func(Event)

// Subscription identifies one registered handler for Off.
type Subscription int

// Bus is a per-widget-instance event bus. Safe for concurrent use; a closed
// bus drops emissions silently so late timer callbacks cannot reach the
// host after destroy.
type Bus struct {
	mu       sync.Mutex
	nextID   Subscription
	handlers map[Type][]subscription
	closed   bool
}

type subscription struct {
	id      Subscription
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]subscription)}
}

// On registers a handler for an event type and returns its subscription id.
func (b *Bus) On(eventType Type, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

// Off removes a previously registered handler. Unknown ids are a no-op.
func (b *Bus) Off(eventType Type, id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.handlers[eventType]
	for i, sub := range registered {
		if sub.id == id {
			b.handlers[eventType] = append(registered[:i:i], registered[i+1:]...)
			return
		}
	}
}

// Emit delivers an event to every handler registered for its type,
// synchronously and in subscription order. Emitting on a closed bus is a
// no-op.
func (b *Bus) Emit(event Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	registered := make([]subscription, len(b.handlers[event.Type]))
	copy(registered, b.handlers[event.Type])
	b.mu.Unlock()

	for _, sub := range registered {
		sub.handler(event)
	}
}

// Close detaches every handler and makes further emissions no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.handlers = make(map[Type][]subscription)
}
