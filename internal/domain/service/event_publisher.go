package service

import (
	"context"
)

// Cart event actions.
const (
	CartActionAdded   = "added"
	CartActionUpdated = "updated"
	CartActionRemoved = "removed"
	CartActionMerged  = "merged"
	CartActionCleared = "cleared"
)

// CartEvent tells dependent views that a principal's cart changed and they
// should refresh. It is a notification contract, not a data feed: consumers
// re-read the cart rather than applying the event.
type CartEvent struct {
	RequestID string `json:"request_id,omitempty"` // For distributed tracing
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishCartEvent publishes a cart-changed notification. Best-effort:
	// callers log failures and carry on.
	PublishCartEvent(ctx context.Context, event *CartEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
