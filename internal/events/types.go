// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	PoolDetected   EventType = "pool.detected"
	PoolSkipped    EventType = "pool.skipped"
	MarketDetected EventType = "market.detected"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// PoolDetectedEvent is emitted when a new pool passed every filter.
type PoolDetectedEvent struct {
	BaseEvent
	PoolID    string
	BaseMint  string
	QuoteMint string
	MarketID  string
	OpenTime  time.Time
	Slot      uint64
}

// PoolSkippedEvent is emitted when a fresh pool was rejected after de-duplication.
type PoolSkippedEvent struct {
	BaseEvent
	PoolID   string
	BaseMint string
	Reason   string // "snipe_list", "mintable", "mint_check_failed"
}

// MarketDetectedEvent is emitted when a market for a token not seen before appears.
type MarketDetectedEvent struct {
	BaseEvent
	MarketID   string
	BaseMint   string
	QuoteMint  string
	EventQueue string
	Bids       string
	Asks       string
	Slot       uint64
}
