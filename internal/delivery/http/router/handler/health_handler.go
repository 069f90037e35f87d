package handler

import (
	"log/slog"
	"net/http"

	"kicks/internal/delivery/http/response"
	"kicks/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// HealthHandlerParams holds dependencies for HealthHandler, injected by Fx.
type HealthHandlerParams struct {
	fx.In

	IdentityUC usecase.IdentityUsecase
	Logger     *slog.Logger
}

// HealthHandler serves liveness and the backend epoch clients use for
// restart detection.
type HealthHandler struct {
	identityUC usecase.IdentityUsecase
	logger     *slog.Logger
}

// NewHealthHandler is the constructor for HealthHandler.
func NewHealthHandler(params HealthHandlerParams) *HealthHandler {
	return &HealthHandler{
		identityUC: params.IdentityUC,
		logger:     params.Logger,
	}
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// ServerTime returns the epoch the backend started at, in milliseconds.
// Clients compare it against the value they stored; a mismatch means a restart
// happened and legacy session scopes are stale.
func (h *HealthHandler) ServerTime(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{
		"server_start_time": h.identityUC.Epoch(),
	}, "Server time retrieved successfully")
}
