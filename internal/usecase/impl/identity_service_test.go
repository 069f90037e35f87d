package impl

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"kicks/config"
	"kicks/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identityTestSecret = "identity_test_secret_long_enough"

func newTestIdentityService(t *testing.T) usecase.IdentityUsecase {
	t.Helper()

	cfg := &config.Config{
		Cart: &config.CartConfig{
			AnonymousCookie: "kicks_anon_id",
			SessionTTL:      24 * time.Hour,
		},
	}
	cfg.SecretKey.Access = identityTestSecret

	return NewIdentityService(cfg, hmacTokenService{}, slog.Default())
}

func signAccessToken(t *testing.T, secret, sub string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestIdentityService_AuthenticatedUser(t *testing.T) {
	svc := newTestIdentityService(t)

	p := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{
		AccessToken: signAccessToken(t, identityTestSecret, "user-42"),
		AnonymousID: "anon-should-be-ignored",
	})

	assert.True(t, p.IsAuthenticated())
	assert.Equal(t, "user-42", p.ID)
	assert.False(t, p.Ephemeral)
}

func TestIdentityService_BadTokenDegradesToAnonymous(t *testing.T) {
	svc := newTestIdentityService(t)

	p := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{
		AccessToken: signAccessToken(t, "wrong_secret_entirely_different", "user-42"),
		AnonymousID: "anon-7",
	})

	// A forged or stale token never fails the request; it falls back to the
	// presented anonymous id.
	assert.False(t, p.IsAuthenticated())
	assert.Equal(t, "anon-7", p.ID)
	assert.False(t, p.Ephemeral)
}

func TestIdentityService_MintsAnonymousWhenNothingPresented(t *testing.T) {
	svc := newTestIdentityService(t)

	p := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{})

	assert.False(t, p.IsAuthenticated())
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Ephemeral)

	// Each resolution without an id mints a distinct principal.
	q := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{})
	assert.NotEqual(t, p.ID, q.ID)
}

func TestIdentityService_StableAnonymousID(t *testing.T) {
	svc := newTestIdentityService(t)

	first := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{AnonymousID: "anon-7"})
	second := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{AnonymousID: "anon-7"})

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, first.Ephemeral)
}

func TestIdentityService_SessionScopeCarried(t *testing.T) {
	svc := newTestIdentityService(t)

	p := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{
		AnonymousID:  "anon-7",
		SessionToken: "tab-session-1",
		ClientEpoch:  svc.Epoch(),
	})

	require.NotNil(t, p.Session)
	assert.Equal(t, "tab-session-1", p.Session.Token)
	assert.True(t, p.Session.ExpiresAt.After(time.Now()))
}

func TestIdentityService_EpochMismatchDropsSession(t *testing.T) {
	svc := newTestIdentityService(t)

	p := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{
		AnonymousID:  "anon-7",
		SessionToken: "tab-session-1",
		ClientEpoch:  "12345", // a previous backend run
	})

	assert.Nil(t, p.Session)
}

func TestIdentityService_ExpiredSessionDropped(t *testing.T) {
	svc := newTestIdentityService(t)

	p := svc.ResolvePrincipal(context.Background(), usecase.ResolveIdentityInput{
		AnonymousID:      "anon-7",
		SessionToken:     "tab-session-1",
		SessionExpiresAt: time.Now().Add(-time.Minute),
	})

	assert.Nil(t, p.Session)
}

func TestIdentityService_EpochIsStable(t *testing.T) {
	svc := newTestIdentityService(t)

	assert.NotEmpty(t, svc.Epoch())
	assert.Equal(t, svc.Epoch(), svc.Epoch())
}
