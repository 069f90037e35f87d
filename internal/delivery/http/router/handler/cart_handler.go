package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "kicks/internal/delivery/context"
	"kicks/internal/delivery/http/response"
	"kicks/internal/domain/entity"
	"kicks/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CartHandlerParams holds dependencies for CartHandler, injected by Fx.
type CartHandlerParams struct {
	fx.In

	CartUC usecase.CartUsecase
	Logger *slog.Logger
}

// CartHandler holds dependencies for cart handlers.
type CartHandler struct {
	cartUC usecase.CartUsecase
	logger *slog.Logger
}

// NewCartHandler is the constructor for CartHandler.
func NewCartHandler(params CartHandlerParams) *CartHandler {
	return &CartHandler{
		cartUC: params.CartUC,
		logger: params.Logger,
	}
}

// AddItemRequest represents the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// SetQuantityRequest represents the request body for setting an absolute quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// MergeRequest represents the request body for merge-on-login.
type MergeRequest struct {
	AnonymousID string `json:"anonymous_id" validate:"required"`
}

// cartView is the cart payload returned to clients: the rows plus the totals
// the storefront renders next to them.
type cartView struct {
	Items      []*entity.CartItem `json:"items"`
	TotalItems int                `json:"total_items"`
	Subtotal   int64              `json:"subtotal"`
}

func newCartView(items []*entity.CartItem) cartView {
	view := cartView{Items: items}
	for _, item := range items {
		view.TotalItems += item.Quantity
		view.Subtotal += item.Subtotal()
	}

	return view
}

// principal extracts the resolved principal placed in the request context by
// the identity middleware.
func principal(c echo.Context) (entity.Principal, bool) {
	return deliverycontext.GetPrincipal(c.Request().Context())
}

// GetCart handles listing the principal's cart.
func (h *CartHandler) GetCart(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	items, err := h.cartUC.ListCart(c.Request().Context(), p)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newCartView(items), "Cart retrieved successfully")
}

// AddItem handles adding a product to the cart.
func (h *CartHandler) AddItem(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart item input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.cartUC.AddItem(c.Request().Context(), p, usecase.AddCartItemInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, item, "Item added to cart")
}

// SetQuantity handles setting an absolute quantity on a cart row.
// Zero or less removes the row.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid cart item id")
	}

	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid quantity input")
	}

	item, err := h.cartUC.SetQuantity(c.Request().Context(), p, itemID, req.Quantity)
	if err != nil {
		return errors.WithStack(err)
	}

	if item == nil {
		return response.Success(c, http.StatusOK, nil, "Item removed from cart")
	}

	return response.Success(c, http.StatusOK, item, "Quantity updated")
}

// RemoveItem handles deleting a cart row. Absent rows succeed quietly.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid cart item id")
	}

	if err := h.cartUC.RemoveItem(c.Request().Context(), p, itemID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Item removed from cart")
}

// Merge handles merge-on-login: rows held under the prior anonymous id move to
// the authenticated principal, consolidating duplicates.
func (h *CartHandler) Merge(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return response.Unauthorized(c, "IDENTITY_UNRESOLVED", "No principal resolved for request")
	}

	var req MergeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid merge input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	merged, err := h.cartUC.MergeCarts(c.Request().Context(), req.AnonymousID, p)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"merged": merged}, "Cart merged successfully")
}
