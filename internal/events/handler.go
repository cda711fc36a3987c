// internal/events/handler.go
package events

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedEvent is returned by a typed handler that received an event of another type.
var ErrUnexpectedEvent = errors.New("unexpected event")

// Handler processes events of a specific type.
type Handler interface {
	// Handle processes an event. It runs on the bus dispatch goroutine and should not block.
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow the use of ordinary functions as event handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// OnPoolDetected adapts fn to a Handler for PoolDetected.
func OnPoolDetected(fn func(context.Context, PoolDetectedEvent) error) Handler {
	return typed(PoolDetected, fn)
}

// OnPoolSkipped adapts fn to a Handler for PoolSkipped.
func OnPoolSkipped(fn func(context.Context, PoolSkippedEvent) error) Handler {
	return typed(PoolSkipped, fn)
}

// OnMarketDetected adapts fn to a Handler for MarketDetected.
func OnMarketDetected(fn func(context.Context, MarketDetectedEvent) error) Handler {
	return typed(MarketDetected, fn)
}

func typed[T Event](eventType EventType, fn func(context.Context, T) error) Handler {
	return HandlerFunc(func(ctx context.Context, event Event) error {
		e, ok := event.(T)
		if !ok {
			return fmt.Errorf("%w: %T published as %s", ErrUnexpectedEvent, event, eventType)
		}
		return fn(ctx, e)
	})
}

// Subscription is returned by Bus.Subscribe.
type Subscription interface {
	// Unsubscribe removes the handler from the bus.
	Unsubscribe()
}

type subscription struct {
	id       string
	eventBus *Bus
	typ      EventType
}

// Unsubscribe removes this subscription from the event bus.
func (s *subscription) Unsubscribe() {
	s.eventBus.unsubscribe(s.id, s.typ)
}
