// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"kicks/internal/domain/entity"
)

// ResolveIdentityInput carries everything a request presented about who it is.
// All fields are optional; resolution never fails the caller.
type ResolveIdentityInput struct {
	AccessToken      string    // Bearer token from the auth provider, if logged in.
	AnonymousID      string    // Durable anonymous id from client storage, if any.
	SessionToken     string    // Legacy per-tab session token, if the client still sends one.
	SessionExpiresAt time.Time // Expiry the client holds for the session token.
	ClientEpoch      string    // Backend epoch the client last observed.
}

// IdentityUsecase resolves the acting principal for cart and checkout operations.
type IdentityUsecase interface {
	// ResolvePrincipal produces a stable principal without requiring login:
	// a verified authenticated user when the access token checks out, the
	// presented anonymous id otherwise, or a freshly minted anonymous id
	// (flagged Ephemeral) when the client presented nothing.
	ResolvePrincipal(ctx context.Context, input ResolveIdentityInput) entity.Principal

	// Epoch returns the backend's start epoch in milliseconds. Clients compare
	// it to the value they stored; a mismatch means the backend restarted and
	// legacy session scopes should be invalidated and reissued.
	Epoch() string
}
