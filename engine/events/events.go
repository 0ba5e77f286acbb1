// Package events implements single-pass event dispatch.
// Handlers observe the events of a finished turn but cannot emit new ones.
package events

import (
	"context"
	"sync"

	"github.com/nathoo/parley/types"
)

// Handler observes one event.
type Handler func(ctx context.Context, e types.Event)

// All subscribes a handler to every event type.
const All = "*"

// Bus routes events to the handlers registered for their type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// On registers a handler for an event type, or for every type with All.
func (b *Bus) On(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Dispatch runs the matching handlers for each event in order. Single pass:
// handlers for a type run in registration order, then the All handlers.
// Returns the number of handler invocations.
func (b *Bus) Dispatch(ctx context.Context, events []types.Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, event := range events {
		for _, h := range b.handlers[event.Type] {
			h(ctx, event)
			n++
		}
		if event.Type == All {
			continue
		}
		for _, h := range b.handlers[All] {
			h(ctx, event)
			n++
		}
	}
	return n
}
