// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"kicks/internal/delivery/http/middleware"
	"kicks/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ProductHandler      *handler.ProductHandler
	CartHandler         *handler.CartHandler
	OrderHandler        *handler.OrderHandler
	HealthHandler       *handler.HealthHandler
	IdentityMiddleware  *middleware.IdentityMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	productHandler      *handler.ProductHandler
	cartHandler         *handler.CartHandler
	orderHandler        *handler.OrderHandler
	healthHandler       *handler.HealthHandler
	identityMiddleware  *middleware.IdentityMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		productHandler:      params.ProductHandler,
		cartHandler:         params.CartHandler,
		orderHandler:        params.OrderHandler,
		healthHandler:       params.HealthHandler,
		identityMiddleware:  params.IdentityMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check and restart-detection endpoints
	e.GET("/health", handler.HealthCheck)
	e.GET("/api/server-time", r.healthHandler.ServerTime)

	// Catalog routes, no identity required
	productGroup := e.Group("/api/products")
	{
		productGroup.GET("", r.productHandler.ListProducts)
		productGroup.GET("/:id", r.productHandler.GetProduct)
	}

	// Cart routes act on behalf of whoever the request resolves to,
	// authenticated or anonymous. Identity resolution never rejects.
	cartGroup := e.Group("/api/cart")
	cartGroup.Use(r.identityMiddleware.Resolve)
	{
		cartGroup.GET("", r.cartHandler.GetCart)
		cartGroup.POST("/items", r.cartHandler.AddItem)
		cartGroup.PATCH("/items/:id", r.cartHandler.SetQuantity)
		cartGroup.DELETE("/items/:id", r.cartHandler.RemoveItem)
		cartGroup.POST("/merge", r.cartHandler.Merge)
	}

	// Order routes
	orderGroup := e.Group("/api/orders")
	orderGroup.Use(r.identityMiddleware.Resolve)
	{
		orderGroup.POST("", r.orderHandler.CreateOrder)
		orderGroup.POST("/from-cart", r.orderHandler.CreateOrderFromCart)
		orderGroup.GET("/:orderNo", r.orderHandler.GetOrder)
		orderGroup.GET("/:orderNo/qrcode", r.orderHandler.GetOrderQR)
	}

	// Payment confirmation is keyed by order number, not by principal
	e.POST("/api/payments/confirm", r.orderHandler.ConfirmPayment)
}
