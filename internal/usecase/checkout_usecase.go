package usecase

import (
	"context"

	"kicks/internal/domain/entity"

	"github.com/google/uuid"
)

// OrderLineInput is one product+size+quantity entry for order creation.
// CartItemID is set for cart-originated lines so confirmation can retire the
// consumed rows; it stays nil for buy-now purchases.
type OrderLineInput struct {
	ProductID  uuid.UUID
	Size       string
	Quantity   int
	CartItemID *uuid.UUID
}

// CreateOrderInput defines the data required to create an order.
type CreateOrderInput struct {
	Lines []OrderLineInput
}

// ConfirmPaymentInput identifies a gateway confirmation callback.
type ConfirmPaymentInput struct {
	OrderNo    string
	PaymentKey string
	Amount     int64
}

// CheckoutUsecase converts cart snapshots (or ad-hoc buy-now items) into
// orders and finalizes them on payment confirmation.
type CheckoutUsecase interface {
	// CreateOrder validates every line, freezes unit prices at the current
	// product price, and persists the order (READY) with all lines in one
	// atomic unit. Returns the created order including its order number.
	CreateOrder(ctx context.Context, p entity.Principal, input CreateOrderInput) (*entity.Order, error)

	// CreateOrderFromCart snapshots the principal's current cart into an order.
	CreateOrderFromCart(ctx context.Context, p entity.Principal) (*entity.Order, error)

	// ConfirmPayment checks the amount against the stored total before any
	// gateway call, confirms with the gateway, marks the order DONE and
	// retires the consumed cart rows. Safe to invoke twice: once DONE it
	// returns the existing order without a second gateway call.
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*entity.Order, error)

	// GetOrder retrieves an order with its lines by order number.
	GetOrder(ctx context.Context, orderNo string) (*entity.Order, error)

	// OrderQR renders the order number as a QR PNG for the pickup counter.
	OrderQR(ctx context.Context, orderNo string) ([]byte, error)
}
