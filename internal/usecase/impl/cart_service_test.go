package impl

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"kicks/internal/domain/entity"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService(cartRepo *memCartRepo, orderRepo *memOrderRepo) (usecase.CartUsecase, *stubPublisher) {
	publisher := &stubPublisher{}
	tm := &fakeTxManager{cartRepo: cartRepo, orderRepo: orderRepo, productRepo: newStubProductRepo()}

	return NewCartService(cartRepo, tm, publisher, slog.Default()), publisher
}

func seedProduct(cartRepo *memCartRepo, price int64) *entity.Product {
	product := &entity.Product{
		ID:       uuid.New(),
		Name:     "Air Max 95",
		Brand:    "Nike",
		Price:    price,
		Category: "running",
	}
	cartRepo.products[product.ID] = product

	return product
}

func TestCartService_AddItemAccumulatesQuantity(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, publisher := newTestCartService(cartRepo, newMemOrderRepo())
	p := entity.AnonymousUser("anon-1")
	product := seedProduct(cartRepo, 139000)

	first, err := svc.AddItem(context.Background(), p, usecase.AddCartItemInput{
		ProductID: product.ID, Size: "270", Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := svc.AddItem(context.Background(), p, usecase.AddCartItemInput{
		ProductID: product.ID, Size: "270", Quantity: 3,
	})
	require.NoError(t, err)

	// Same row, accumulated quantity, still a single live row for the triple.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, 1, cartRepo.count())
	assert.Equal(t, []string{"added", "added"}, publisher.actions())
}

func TestCartService_AddItemSeparateSizes(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, _ := newTestCartService(cartRepo, newMemOrderRepo())
	p := entity.AnonymousUser("anon-1")
	product := seedProduct(cartRepo, 139000)

	_, err := svc.AddItem(context.Background(), p, usecase.AddCartItemInput{
		ProductID: product.ID, Size: "260", Quantity: 1,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), p, usecase.AddCartItemInput{
		ProductID: product.ID, Size: "270", Quantity: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, cartRepo.count())
}

func TestCartService_AddItemRejectsZeroQuantity(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, _ := newTestCartService(cartRepo, newMemOrderRepo())
	product := seedProduct(cartRepo, 139000)

	_, err := svc.AddItem(context.Background(), entity.AnonymousUser("anon-1"), usecase.AddCartItemInput{
		ProductID: product.ID, Quantity: 0,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
}

func TestCartService_SetQuantityZeroDeletes(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, publisher := newTestCartService(cartRepo, newMemOrderRepo())
	p := entity.AnonymousUser("anon-1")
	product := seedProduct(cartRepo, 139000)

	item, err := svc.AddItem(context.Background(), p, usecase.AddCartItemInput{
		ProductID: product.ID, Size: "270", Quantity: 2,
	})
	require.NoError(t, err)

	got, err := svc.SetQuantity(context.Background(), p, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, cartRepo.count())

	// Repeating the delete-by-zero is still a success.
	got, err = svc.SetQuantity(context.Background(), p, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Contains(t, publisher.actions(), "removed")
}

func TestCartService_SetQuantityOwnershipGuard(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, _ := newTestCartService(cartRepo, newMemOrderRepo())
	product := seedProduct(cartRepo, 139000)

	item, err := svc.AddItem(context.Background(), entity.AnonymousUser("anon-1"), usecase.AddCartItemInput{
		ProductID: product.ID, Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.SetQuantity(context.Background(), entity.AnonymousUser("anon-2"), item.ID, 3)
	assert.ErrorIs(t, err, domainerrors.ErrCartOwnership)
}

func TestCartService_RemoveItemAbsentIsNoOp(t *testing.T) {
	svc, _ := newTestCartService(newMemCartRepo(), newMemOrderRepo())

	err := svc.RemoveItem(context.Background(), entity.AnonymousUser("anon-1"), uuid.New())
	assert.NoError(t, err)
}

func TestCartService_ListCartFiltersExpiredRows(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, _ := newTestCartService(cartRepo, newMemOrderRepo())
	p := entity.AnonymousUser("anon-1")
	product := seedProduct(cartRepo, 139000)

	_, err := svc.AddItem(context.Background(), p, usecase.AddCartItemInput{
		ProductID: product.ID, Size: "270", Quantity: 1,
	})
	require.NoError(t, err)

	// A legacy session-scoped row that already expired.
	expired := time.Now().Add(-time.Hour)
	sessionID := "old-session"
	stale := &entity.CartItem{
		UserID:    p.ID,
		ProductID: product.ID,
		Quantity:  1,
		Size:      "280",
		SessionID: &sessionID,
		ExpiresAt: &expired,
	}
	require.NoError(t, cartRepo.Create(context.Background(), stale))

	items, err := svc.ListCart(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "270", items[0].Size)

	// The opportunistic sweep removed the stale row from the store too.
	assert.Equal(t, 1, cartRepo.count())
}

func TestCartService_MergeCartsConsolidates(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, publisher := newTestCartService(cartRepo, newMemOrderRepo())
	anon := entity.AnonymousUser("anon-1")
	user := entity.AuthenticatedUser("user-9")
	shared := seedProduct(cartRepo, 139000)
	anonOnly := seedProduct(cartRepo, 99000)

	// Target holds 1 of the shared triple; anon holds 2 of it plus one other row.
	_, err := svc.AddItem(context.Background(), user, usecase.AddCartItemInput{
		ProductID: shared.ID, Size: "270", Quantity: 1,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), anon, usecase.AddCartItemInput{
		ProductID: shared.ID, Size: "270", Quantity: 2,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), anon, usecase.AddCartItemInput{
		ProductID: anonOnly.ID, Size: "260", Quantity: 1,
	})
	require.NoError(t, err)

	moved, err := svc.MergeCarts(context.Background(), anon.ID, user)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	// Anonymous cart is drained.
	anonItems, err := svc.ListCart(context.Background(), anon)
	require.NoError(t, err)
	assert.Empty(t, anonItems)

	// Target ends with two rows, the shared triple summed to 3.
	userItems, err := svc.ListCart(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, userItems, 2)
	for _, item := range userItems {
		if item.ProductID == shared.ID {
			assert.Equal(t, 3, item.Quantity)
		}
	}

	assert.Contains(t, publisher.actions(), "merged")
}

func TestCartService_MergeCartsRequiresLogin(t *testing.T) {
	svc, _ := newTestCartService(newMemCartRepo(), newMemOrderRepo())

	_, err := svc.MergeCarts(context.Background(), "anon-1", entity.AnonymousUser("anon-2"))
	assert.ErrorIs(t, err, domainerrors.ErrLoginRequired)
}

func TestCartService_MergeCartsEmptySourceIsNoOp(t *testing.T) {
	svc, publisher := newTestCartService(newMemCartRepo(), newMemOrderRepo())
	user := entity.AuthenticatedUser("user-9")

	moved, err := svc.MergeCarts(context.Background(), "anon-1", user)
	require.NoError(t, err)
	assert.Zero(t, moved)

	// Merging your own id is also a no-op.
	moved, err = svc.MergeCarts(context.Background(), user.ID, user)
	require.NoError(t, err)
	assert.Zero(t, moved)

	assert.Empty(t, publisher.actions())
}

func TestCartService_SweepExpired(t *testing.T) {
	cartRepo := newMemCartRepo()
	svc, _ := newTestCartService(cartRepo, newMemOrderRepo())
	product := seedProduct(cartRepo, 139000)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, cartRepo.Create(context.Background(), &entity.CartItem{
		UserID:    "anon-1",
		ProductID: product.ID,
		Quantity:  1,
		ExpiresAt: &expired,
	}))

	removed, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 0, cartRepo.count())
}
