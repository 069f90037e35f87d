// Package payment implements the payment gateway port against the Toss
// Payments server-to-server confirmation API.
package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"kicks/config"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/domain/service"

	"github.com/go-resty/resty/v2"
)

const defaultConfirmTimeout = 10 * time.Second

// tossClient confirms payments against the Toss Payments REST API.
type tossClient struct {
	client *resty.Client
	logger *slog.Logger
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type confirmResponse struct {
	PaymentKey  string    `json:"paymentKey"`
	OrderID     string    `json:"orderId"`
	TotalAmount int64     `json:"totalAmount"`
	Method      string    `json:"method"`
	ApprovedAt  time.Time `json:"approvedAt"`
}

type gatewayErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewTossClient is the constructor for the Toss payment gateway adapter.
// The secret key is sent as HTTP Basic auth with an empty password, per the
// Toss API contract: base64(secretKey + ":").
func NewTossClient(cfg *config.Config, logger *slog.Logger) service.PaymentGateway {
	timeout := cfg.Payment.ConfirmTimeout
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(cfg.Payment.SecretKey + ":"))
	client := resty.New().
		SetBaseURL(cfg.Payment.BaseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Basic "+encoded).
		SetHeader("Content-Type", "application/json")

	return &tossClient{
		client: client,
		logger: logger,
	}
}

// Confirm authorizes the transaction identified by the payment key.
//
// Only a parsed 2xx response counts as success. A non-2xx response is a
// definitive rejection and surfaces the provider's code and message. A
// transport error means the charge may or may not have gone through, so it
// maps to ErrPaymentOutcomeUnknown rather than a decline.
func (c *tossClient) Confirm(ctx context.Context, req service.ConfirmPaymentRequest) (*service.PaymentConfirmation, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(confirmRequest{
			PaymentKey: req.PaymentKey,
			OrderID:    req.OrderNo,
			Amount:     req.Amount,
		}).
		Post("/v1/payments/confirm")
	if err != nil {
		c.logger.ErrorContext(ctx, "payment confirm transport failure",
			slog.String("orderNo", req.OrderNo),
			slog.String("error", err.Error()),
		)

		return nil, domainerrors.ErrPaymentOutcomeUnknown.WrapMessage(err.Error())
	}

	if resp.IsError() {
		var body gatewayErrorBody
		// A body that fails to parse still yields a usable gateway error.
		_ = json.Unmarshal(resp.Body(), &body)

		c.logger.WarnContext(ctx, "payment confirm rejected",
			slog.String("orderNo", req.OrderNo),
			slog.Int("status", resp.StatusCode()),
			slog.String("code", body.Code),
		)

		return nil, domainerrors.NewPaymentGatewayError(resp.StatusCode(), body.Code, body.Message)
	}

	var parsed confirmResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, domainerrors.ErrPaymentOutcomeUnknown.WrapMessage("unparsable gateway success response")
	}

	return &service.PaymentConfirmation{
		PaymentKey: parsed.PaymentKey,
		OrderNo:    parsed.OrderID,
		Amount:     parsed.TotalAmount,
		Method:     parsed.Method,
		ApprovedAt: parsed.ApprovedAt,
	}, nil
}
