// Package service defines ports to external collaborators the core consumes:
// the payment gateway, the auth provider's tokens, event fan-out, QR rendering.
package service

import (
	"context"
	"time"
)

// ConfirmPaymentRequest identifies one payment authorization at the gateway.
// OrderNo is the correlation key the order was created under; PaymentKey is
// the gateway's own reference issued to the client during checkout.
type ConfirmPaymentRequest struct {
	OrderNo    string
	PaymentKey string
	Amount     int64
}

// PaymentConfirmation is the gateway's success payload.
type PaymentConfirmation struct {
	PaymentKey string
	OrderNo    string
	Amount     int64
	Method     string
	ApprovedAt time.Time
}

// PaymentGateway is the server-to-server port to the external payment provider.
//
// Confirm authorizes the transaction. Gateway rejections come back as a
// domain PaymentGatewayError carrying the provider's status and message; a
// transport failure with no response is ErrPaymentOutcomeUnknown, which the
// caller must treat as "unknown outcome", not as a declined charge.
type PaymentGateway interface {
	Confirm(ctx context.Context, req ConfirmPaymentRequest) (*PaymentConfirmation, error)
}
