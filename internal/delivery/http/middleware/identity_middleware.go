package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kicks/config"
	deliverycontext "kicks/internal/delivery/context"
	"kicks/internal/usecase"

	"github.com/labstack/echo/v4"
)

// anonymousCookieMaxAge keeps the durable anonymous id alive across visits.
const anonymousCookieMaxAge = 365 * 24 * time.Hour

// HeaderXSessionExpires carries the client's expiry for its legacy session
// token, as unix milliseconds.
const HeaderXSessionExpires = "X-Session-Expires"

// IdentityMiddleware resolves the acting principal for every request. It never
// rejects: a request with no credentials at all still proceeds under a freshly
// minted anonymous id, which is handed back to the client as a durable cookie.
type IdentityMiddleware struct {
	identityUC usecase.IdentityUsecase
	cfg        *config.Config
}

// NewIdentityMiddleware is the constructor for IdentityMiddleware.
func NewIdentityMiddleware(identityUC usecase.IdentityUsecase, cfg *config.Config) *IdentityMiddleware {
	return &IdentityMiddleware{identityUC: identityUC, cfg: cfg}
}

// Resolve builds the identity input from the request and stores the resolved
// principal in the request context for handlers and services.
func (m *IdentityMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		input := usecase.ResolveIdentityInput{
			AccessToken:  bearerToken(c),
			AnonymousID:  m.anonymousID(c),
			SessionToken: c.Request().Header.Get(deliverycontext.HeaderXSessionID),
			ClientEpoch:  c.Request().Header.Get(deliverycontext.HeaderXClientEpoch),
		}
		if raw := c.Request().Header.Get(HeaderXSessionExpires); raw != "" {
			if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
				input.SessionExpiresAt = time.UnixMilli(millis)
			}
		}

		principal := m.identityUC.ResolvePrincipal(c.Request().Context(), input)

		// A minted id must survive the visit, so hand it back as a cookie.
		if principal.Ephemeral {
			c.SetCookie(&http.Cookie{
				Name:     m.cfg.Cart.AnonymousCookie,
				Value:    principal.ID,
				Path:     "/",
				MaxAge:   int(anonymousCookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := deliverycontext.WithPrincipal(c.Request().Context(), principal)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// bearerToken extracts the access token from the Authorization header, if any.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}

	return token
}

// anonymousID prefers the durable cookie and falls back to the header clients
// use before cookies are established.
func (m *IdentityMiddleware) anonymousID(c echo.Context) string {
	if cookie, err := c.Cookie(m.cfg.Cart.AnonymousCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return c.Request().Header.Get(deliverycontext.HeaderXAnonymousID)
}
