package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCartItem_Subtotal(t *testing.T) {
	item := &CartItem{
		Quantity: 2,
		Product:  &Product{Price: 139000},
	}
	assert.Equal(t, int64(278000), item.Subtotal())

	// A row whose product vanished contributes nothing.
	item.Product = nil
	assert.Zero(t, item.Subtotal())
}

func TestCartItem_VisibleTo(t *testing.T) {
	now := time.Now()
	owner := AnonymousUser("anon-1")

	item := &CartItem{UserID: "anon-1"}
	assert.True(t, item.VisibleTo(owner, now))
	assert.False(t, item.VisibleTo(AnonymousUser("anon-2"), now))

	// Expired rows are invisible even to their owner.
	expired := now.Add(-time.Minute)
	item.ExpiresAt = &expired
	assert.False(t, item.VisibleTo(owner, now))
}

func TestCartItem_VisibleTo_SessionScoping(t *testing.T) {
	now := time.Now()
	scoped := AnonymousUser("anon-1")
	scoped.Session = &SessionScope{Token: "tab-a", ExpiresAt: now.Add(time.Hour)}

	sameTab := "tab-a"
	otherTab := "tab-b"

	// Matching scope is visible; another tab's scope is not.
	item := &CartItem{UserID: "anon-1", SessionID: &sameTab}
	assert.True(t, item.VisibleTo(scoped, now))

	item.SessionID = &otherTab
	assert.False(t, item.VisibleTo(scoped, now))

	// Rows predating session scoping stay visible to scoped principals.
	item.SessionID = nil
	assert.True(t, item.VisibleTo(scoped, now))

	// An unscoped principal sees its rows regardless of their scope.
	item.SessionID = &sameTab
	assert.True(t, item.VisibleTo(AnonymousUser("anon-1"), now))
}

func TestPrincipal_Constructors(t *testing.T) {
	user := AuthenticatedUser("user-42")
	assert.True(t, user.IsAuthenticated())
	assert.True(t, user.Valid())
	assert.False(t, user.Ephemeral)

	anon := AnonymousUser("anon-7")
	assert.False(t, anon.IsAuthenticated())
	assert.True(t, anon.Valid())
	assert.False(t, anon.Ephemeral)

	minted := MintAnonymousUser()
	assert.False(t, minted.IsAuthenticated())
	assert.True(t, minted.Valid())
	assert.True(t, minted.Ephemeral)
	assert.NotEmpty(t, minted.ID)
}

func TestSessionScope_Expired(t *testing.T) {
	now := time.Now()

	scope := SessionScope{Token: "tab-a", ExpiresAt: now.Add(time.Minute)}
	assert.False(t, scope.Expired(now))

	scope.ExpiresAt = now.Add(-time.Minute)
	assert.True(t, scope.Expired(now))
}
