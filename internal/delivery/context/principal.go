package context

import (
	"context"

	"kicks/internal/domain/entity"
)

const (
	// KeyPrincipal is the key for storing the resolved principal in context.
	KeyPrincipal ContextKey = "principal"

	// HeaderXAnonymousID is the HTTP header carrying the client's durable anonymous id.
	HeaderXAnonymousID = "X-Anonymous-Id"

	// HeaderXSessionID is the HTTP header carrying the legacy per-tab session token.
	HeaderXSessionID = "X-Session-Id"

	// HeaderXClientEpoch is the HTTP header carrying the backend epoch the client
	// last observed, used to detect server restarts.
	HeaderXClientEpoch = "X-Client-Epoch"
)

// WithPrincipal returns a new context carrying the resolved principal.
func WithPrincipal(ctx context.Context, p entity.Principal) context.Context {
	return context.WithValue(ctx, KeyPrincipal, p)
}

// GetPrincipal extracts the resolved principal from context.Context.
func GetPrincipal(ctx context.Context) (entity.Principal, bool) {
	p, ok := ctx.Value(KeyPrincipal).(entity.Principal)

	return p, ok
}
