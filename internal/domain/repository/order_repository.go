package repository

import (
	"context"
	"errors"

	"kicks/internal/domain/entity"
)

// ErrOrderNotFound is returned when an order is absent.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the standard operations for order persistence.
//
// Orders are immutable once their lines are written; the only mutation this
// interface allows is the conditional status/payment-key transition performed
// by MarkPaid.
type OrderRepository interface {
	// Create persists an order together with all of its lines in one atomic
	// unit. A partially created order must never be observable.
	Create(ctx context.Context, order *entity.Order) error

	// FindByOrderNo retrieves an order with its lines by the external order number.
	FindByOrderNo(ctx context.Context, orderNo string) (*entity.Order, error)

	// MarkPaid transitions the order to DONE and records the gateway payment
	// key, but only while the order is still READY or IN_PROGRESS. Returns
	// false when no row matched the guard, i.e. the order was already
	// finalized by a concurrent confirmation.
	MarkPaid(ctx context.Context, orderNo string, paymentKey string) (bool, error)
}
