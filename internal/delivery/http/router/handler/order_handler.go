package handler

import (
	"log/slog"
	"net/http"

	"kicks/internal/delivery/http/response"
	"kicks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	CheckoutUC usecase.CheckoutUsecase
	Logger     *slog.Logger
}

// OrderHandler holds dependencies for checkout handlers.
type OrderHandler struct {
	checkoutUC usecase.CheckoutUsecase
	logger     *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler.
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		checkoutUC: params.CheckoutUC,
		logger:     params.Logger,
	}
}

// OrderLineRequest is one line of a create-order request. CartItemID is set
// for cart-originated lines and omitted for buy-now purchases.
type OrderLineRequest struct {
	ProductID  uuid.UUID  `json:"product_id" validate:"required"`
	Size       string     `json:"size"`
	Quantity   int        `json:"quantity" validate:"required,min=1"`
	CartItemID *uuid.UUID `json:"cart_item_id,omitempty"`
}

// CreateOrderRequest represents the request body for creating an order.
type CreateOrderRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ConfirmPaymentRequest represents the gateway confirmation callback body.
type ConfirmPaymentRequest struct {
	OrderNo    string `json:"order_id" validate:"required"`
	PaymentKey string `json:"payment_key" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,min=1"`
}

// CreateOrder handles creating an order from explicit lines.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := usecase.CreateOrderInput{}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, usecase.OrderLineInput{
			ProductID:  line.ProductID,
			Size:       line.Size,
			Quantity:   line.Quantity,
			CartItemID: line.CartItemID,
		})
	}

	order, err := h.checkoutUC.CreateOrder(c.Request().Context(), p, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, order, "Order created successfully")
}

// CreateOrderFromCart handles snapshotting the principal's cart into an order.
func (h *OrderHandler) CreateOrderFromCart(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	order, err := h.checkoutUC.CreateOrderFromCart(c.Request().Context(), p)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, order, "Order created successfully")
}

// ConfirmPayment handles the payment confirmation callback after the client
// completes the gateway widget flow.
func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid confirmation input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.checkoutUC.ConfirmPayment(c.Request().Context(), usecase.ConfirmPaymentInput{
		OrderNo:    req.OrderNo,
		PaymentKey: req.PaymentKey,
		Amount:     req.Amount,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, order, "Payment confirmed")
}

// GetOrder handles retrieving an order with its lines by order number.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.checkoutUC.GetOrder(c.Request().Context(), c.Param("orderNo"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, order, "Order retrieved successfully")
}

// GetOrderQR handles rendering the order number as a QR PNG for pickup.
func (h *OrderHandler) GetOrderQR(c echo.Context) error {
	png, err := h.checkoutUC.OrderQR(c.Request().Context(), c.Param("orderNo"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
