package entity

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusReady      OrderStatus = "READY"       // Created, awaiting gateway confirmation.
	OrderStatusInProgress OrderStatus = "IN_PROGRESS" // Confirmation underway.
	OrderStatusDone       OrderStatus = "DONE"        // Payment captured. Terminal.
	OrderStatusCanceled   OrderStatus = "CANCELED"    // Aborted before capture. Terminal.
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDone || s == OrderStatusCanceled
}

// CanTransitionTo reports whether moving to the target status is legal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusReady:
		return target == OrderStatusInProgress || target == OrderStatusDone || target == OrderStatusCanceled
	case OrderStatusInProgress:
		return target == OrderStatusDone || target == OrderStatusCanceled
	default:
		return false
	}
}

// String representation (for logging).
func (s OrderStatus) String() string {
	return string(s)
}

// Order is the immutable snapshot of a purchase intent. After creation only
// Status and PaymentKey may ever change; Amount and Lines are frozen.
type Order struct {
	ID      uuid.UUID
	UserID  string // Principal id the order was placed under.
	OrderNo string // Globally unique, the gateway's correlation key.
	Amount  int64  // Sum of line UnitPrice*Quantity at creation time. Never recomputed.
	Status  OrderStatus

	// PaymentKey is the gateway's payment reference, recorded on confirmation.
	PaymentKey *string

	CreatedAt time.Time
	Lines     []*OrderLine
}

// OrderLine is one product+size+quantity entry frozen into an order.
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Size      string
	UnitPrice int64 // Price captured at order time, not a live product reference.

	// CartItemID points at the originating cart row so confirmation knows what
	// to delete. Nil for buy-now lines that never touched the cart.
	CartItemID *uuid.UUID
}

// LineTotal is the frozen amount for this line.
func (l *OrderLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

const orderNoAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNo generates an order number of the form
// ORDER-<epoch-millis>-<9 random uppercase base36 chars>.
// Uniqueness is probabilistic; collisions are accepted as negligible and the
// unique index on orders.order_no is the backstop.
func NewOrderNo() string {
	buf := make([]byte, 9)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = orderNoAlphabet[int(b)%len(orderNoAlphabet)]
	}

	return fmt.Sprintf("ORDER-%d-%s", time.Now().UnixMilli(), buf)
}
