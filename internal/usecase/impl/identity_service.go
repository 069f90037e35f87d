// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"kicks/config"
	deliverycontext "kicks/internal/delivery/context"
	"kicks/internal/domain/entity"
	"kicks/internal/domain/service"
	"kicks/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
)

// identityService implements the IdentityUsecase interface.
type identityService struct {
	cfg      *config.Config
	tokenSvc service.TokenService
	logger   *slog.Logger

	// epoch is fixed at process start. A client holding a different value has
	// crossed a backend restart and must drop its legacy session scope.
	epoch string
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(
	cfg *config.Config,
	tokenSvc service.TokenService,
	logger *slog.Logger,
) usecase.IdentityUsecase {
	return &identityService{
		cfg:      cfg,
		tokenSvc: tokenSvc,
		logger:   logger,
		epoch:    strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Epoch returns the backend start epoch in milliseconds.
func (srv *identityService) Epoch() string {
	return srv.epoch
}

// ResolvePrincipal never fails the caller: a bad access token degrades to the
// anonymous path, and a missing anonymous id mints a fresh one flagged
// Ephemeral so callers can skip store writes when the client cannot persist it.
func (srv *identityService) ResolvePrincipal(ctx context.Context, input usecase.ResolveIdentityInput) entity.Principal {
	if input.AccessToken != "" {
		if id, ok := srv.verifyAccessToken(input.AccessToken); ok {
			return entity.AuthenticatedUser(id)
		}
		srv.log(ctx).Warn("Access token rejected, resolving as anonymous")
	}

	var p entity.Principal
	if input.AnonymousID != "" {
		p = entity.AnonymousUser(input.AnonymousID)
	} else {
		p = entity.MintAnonymousUser()
		srv.log(ctx).Debug("Minted anonymous principal", slog.String("anonymous_id", p.ID))
	}

	p.Session = srv.resolveSessionScope(ctx, input)

	return p
}

// verifyAccessToken checks the auth provider's signature and extracts the subject.
func (srv *identityService) verifyAccessToken(tokenString string) (string, bool) {
	token, err := srv.tokenSvc.ValidateToken(tokenString, srv.cfg.SecretKey.Access)
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}

	return sub, true
}

// resolveSessionScope reconstructs the legacy session scope, if the client
// still carries one and it survives both its own expiry and the backend-epoch
// check. A changed epoch invalidates the scope outright; the client reissues
// a fresh token on its side.
func (srv *identityService) resolveSessionScope(ctx context.Context, input usecase.ResolveIdentityInput) *entity.SessionScope {
	if input.SessionToken == "" {
		return nil
	}

	if input.ClientEpoch != "" && input.ClientEpoch != srv.epoch {
		srv.log(ctx).Debug("Backend epoch changed, invalidating legacy session scope",
			slog.String("client_epoch", input.ClientEpoch),
			slog.String("epoch", srv.epoch),
		)

		return nil
	}

	expiresAt := input.SessionExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(srv.cfg.Cart.SessionTTL)
	}

	scope := &entity.SessionScope{Token: input.SessionToken, ExpiresAt: expiresAt}
	if scope.Expired(time.Now()) {
		return nil
	}

	return scope
}
