// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// PrincipalKind distinguishes the two identities a cart can belong to.
type PrincipalKind string

const (
	// PrincipalAuthenticated is a durable identity issued by the auth provider.
	PrincipalAuthenticated PrincipalKind = "authenticated"

	// PrincipalAnonymous is a client-held durable identifier minted on first contact.
	PrincipalAnonymous PrincipalKind = "anonymous"
)

// SessionScope is the legacy ephemeral scope some old cart rows carry.
// Rows written by older clients are keyed by (anonymous id, session token) and expire;
// new code never writes it, but reads must still honor it.
type SessionScope struct {
	Token     string    // The per-tab session token from the client's ephemeral storage.
	ExpiresAt time.Time // When rows under this scope stop being visible.
}

// Expired reports whether the scope has passed its expiry at the given instant.
func (s SessionScope) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now)
}

// Principal is the identity under which cart and order rows are scoped.
// It is a tagged value rather than a nullable user reference: every cart operation
// acts on behalf of exactly one Principal, authenticated or not.
type Principal struct {
	Kind PrincipalKind
	ID   string // Auth-provider user id, or the minted anonymous id.

	// Ephemeral marks a principal minted during this request because the client
	// presented no durable id. Callers may skip store writes for such principals
	// when the client cannot persist the id.
	Ephemeral bool

	// Session is the optional legacy scope. Nil for all new traffic.
	Session *SessionScope
}

// AuthenticatedUser builds the principal for a verified auth-provider identity.
func AuthenticatedUser(id string) Principal {
	return Principal{Kind: PrincipalAuthenticated, ID: id}
}

// AnonymousUser builds the principal for a client-held anonymous id.
func AnonymousUser(id string) Principal {
	return Principal{Kind: PrincipalAnonymous, ID: id}
}

// MintAnonymousUser generates a fresh anonymous principal. The caller is responsible
// for handing the id back to the client for durable storage; until that round-trip
// completes the principal is flagged Ephemeral.
func MintAnonymousUser() Principal {
	return Principal{
		Kind:      PrincipalAnonymous,
		ID:        uuid.New().String(),
		Ephemeral: true,
	}
}

// IsAuthenticated reports whether the principal was issued by the auth provider.
func (p Principal) IsAuthenticated() bool {
	return p.Kind == PrincipalAuthenticated
}

// Valid reports whether the principal can key store rows.
func (p Principal) Valid() bool {
	return p.ID != "" && (p.Kind == PrincipalAuthenticated || p.Kind == PrincipalAnonymous)
}
