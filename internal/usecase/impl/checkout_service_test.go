package impl

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"kicks/internal/domain/entity"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc       usecase.CheckoutUsecase
	cartRepo  *memCartRepo
	orderRepo *memOrderRepo
	gateway   *stubGateway
	publisher *stubPublisher
	products  *stubProductRepo
}

func newCheckoutFixture(products ...*entity.Product) *checkoutFixture {
	cartRepo := newMemCartRepo()
	orderRepo := newMemOrderRepo()
	productRepo := newStubProductRepo(products...)
	for _, product := range products {
		cartRepo.products[product.ID] = product
	}
	gateway := &stubGateway{}
	publisher := &stubPublisher{}
	tm := &fakeTxManager{cartRepo: cartRepo, orderRepo: orderRepo, productRepo: productRepo}

	return &checkoutFixture{
		svc:       NewCheckoutService(tm, orderRepo, cartRepo, gateway, stubQRService{}, publisher, slog.Default()),
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		gateway:   gateway,
		publisher: publisher,
		products:  productRepo,
	}
}

func testProduct(price int64) *entity.Product {
	return &entity.Product{
		ID:       uuid.New(),
		Name:     "Jordan 1 Retro",
		Brand:    "Nike",
		Price:    price,
		Category: "basketball",
	}
}

func TestCheckoutService_CreateOrderFreezesPrices(t *testing.T) {
	sneaker := testProduct(219000)
	tee := testProduct(45000)
	fx := newCheckoutFixture(sneaker, tee)
	p := entity.AnonymousUser("anon-1")

	order, err := fx.svc.CreateOrder(context.Background(), p, usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{
			{ProductID: sneaker.ID, Size: "270", Quantity: 2},
			{ProductID: tee.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNo, "ORDER-"))
	assert.Equal(t, entity.OrderStatusReady, order.Status)
	assert.Equal(t, int64(2*219000+45000), order.Amount)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, int64(219000), order.Lines[0].UnitPrice)
	assert.Nil(t, order.Lines[0].CartItemID)
}

func TestCheckoutService_CreateOrderMissingProduct(t *testing.T) {
	fx := newCheckoutFixture(testProduct(219000))

	_, err := fx.svc.CreateOrder(context.Background(), entity.AnonymousUser("anon-1"), usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrProductNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestCheckoutService_CreateOrderEmpty(t *testing.T) {
	fx := newCheckoutFixture()

	_, err := fx.svc.CreateOrder(context.Background(), entity.AnonymousUser("anon-1"), usecase.CreateOrderInput{})
	assert.ErrorIs(t, err, domainerrors.ErrEmptyOrder)
}

func TestCheckoutService_CreateOrderFromCart(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)
	p := entity.AnonymousUser("anon-1")

	item := &entity.CartItem{UserID: p.ID, ProductID: sneaker.ID, Quantity: 2, Size: "270"}
	require.NoError(t, fx.cartRepo.Create(context.Background(), item))

	order, err := fx.svc.CreateOrderFromCart(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	require.NotNil(t, order.Lines[0].CartItemID)
	assert.Equal(t, item.ID, *order.Lines[0].CartItemID)

	// Creation alone does not consume the cart; only confirmation retires rows.
	assert.Equal(t, 1, fx.cartRepo.count())
}

func TestCheckoutService_CreateOrderFromEmptyCart(t *testing.T) {
	fx := newCheckoutFixture()

	_, err := fx.svc.CreateOrderFromCart(context.Background(), entity.AnonymousUser("anon-1"))
	assert.ErrorIs(t, err, domainerrors.ErrEmptyOrder)
}

func TestCheckoutService_ConfirmPaymentFinalizesAndRetiresCart(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)
	p := entity.AnonymousUser("anon-1")

	item := &entity.CartItem{UserID: p.ID, ProductID: sneaker.ID, Quantity: 1, Size: "270"}
	require.NoError(t, fx.cartRepo.Create(context.Background(), item))

	order, err := fx.svc.CreateOrderFromCart(context.Background(), p)
	require.NoError(t, err)

	confirmed, err := fx.svc.ConfirmPayment(context.Background(), usecase.ConfirmPaymentInput{
		OrderNo:    order.OrderNo,
		PaymentKey: "pay-key-1",
		Amount:     order.Amount,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusDone, confirmed.Status)
	require.NotNil(t, confirmed.PaymentKey)
	assert.Equal(t, "pay-key-1", *confirmed.PaymentKey)
	assert.Equal(t, 1, fx.gateway.calls)

	// Consumed cart row is retired and dependents are told to refresh.
	assert.Equal(t, 0, fx.cartRepo.count())
	assert.Contains(t, fx.publisher.actions(), "cleared")
}

func TestCheckoutService_ConfirmPaymentIdempotent(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)
	p := entity.AnonymousUser("anon-1")

	order, err := fx.svc.CreateOrder(context.Background(), p, usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{{ProductID: sneaker.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	input := usecase.ConfirmPaymentInput{OrderNo: order.OrderNo, PaymentKey: "pay-key-1", Amount: order.Amount}

	first, err := fx.svc.ConfirmPayment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDone, first.Status)

	second, err := fx.svc.ConfirmPayment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDone, second.Status)

	// The duplicate confirmation never reached the gateway.
	assert.Equal(t, 1, fx.gateway.calls)
}

func TestCheckoutService_ConfirmPaymentAmountMismatch(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)

	order, err := fx.svc.CreateOrder(context.Background(), entity.AnonymousUser("anon-1"), usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{{ProductID: sneaker.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = fx.svc.ConfirmPayment(context.Background(), usecase.ConfirmPaymentInput{
		OrderNo:    order.OrderNo,
		PaymentKey: "pay-key-1",
		Amount:     order.Amount - 1000,
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrAmountMismatch.ErrorCode(), appErr.ErrorCode())

	// Tampered amounts are rejected before any gateway traffic.
	assert.Zero(t, fx.gateway.calls)

	// The order is untouched and can still be confirmed correctly.
	reloaded, err := fx.svc.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusReady, reloaded.Status)
}

func TestCheckoutService_ConfirmPaymentGatewayRejection(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)
	fx.gateway.err = domainerrors.NewPaymentGatewayError(400, "REJECT_CARD", "card declined")

	order, err := fx.svc.CreateOrder(context.Background(), entity.AnonymousUser("anon-1"), usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{{ProductID: sneaker.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = fx.svc.ConfirmPayment(context.Background(), usecase.ConfirmPaymentInput{
		OrderNo:    order.OrderNo,
		PaymentKey: "pay-key-1",
		Amount:     order.Amount,
	})
	require.Error(t, err)

	// Order stays READY so the user can retry checkout.
	reloaded, err := fx.svc.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusReady, reloaded.Status)
	assert.Nil(t, reloaded.PaymentKey)
}

func TestCheckoutService_ConfirmPaymentBuyNowSkipsCart(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)
	p := entity.AnonymousUser("anon-1")

	// An unrelated cart row that must survive a buy-now purchase.
	bystander := &entity.CartItem{UserID: p.ID, ProductID: sneaker.ID, Quantity: 1, Size: "280"}
	require.NoError(t, fx.cartRepo.Create(context.Background(), bystander))

	order, err := fx.svc.CreateOrder(context.Background(), p, usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{{ProductID: sneaker.ID, Size: "270", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = fx.svc.ConfirmPayment(context.Background(), usecase.ConfirmPaymentInput{
		OrderNo:    order.OrderNo,
		PaymentKey: "pay-key-1",
		Amount:     order.Amount,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fx.cartRepo.count())
}

func TestCheckoutService_ConfirmPaymentUnknownOrder(t *testing.T) {
	fx := newCheckoutFixture()

	_, err := fx.svc.ConfirmPayment(context.Background(), usecase.ConfirmPaymentInput{
		OrderNo:    "ORDER-123-UNKNOWN",
		PaymentKey: "pay-key-1",
		Amount:     1000,
	})
	assert.ErrorIs(t, err, domainerrors.ErrOrderNotFound)
}

func TestCheckoutService_OrderQR(t *testing.T) {
	sneaker := testProduct(219000)
	fx := newCheckoutFixture(sneaker)

	order, err := fx.svc.CreateOrder(context.Background(), entity.AnonymousUser("anon-1"), usecase.CreateOrderInput{
		Lines: []usecase.OrderLineInput{{ProductID: sneaker.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	png, err := fx.svc.OrderQR(context.Background(), order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)

	_, err = fx.svc.OrderQR(context.Background(), "ORDER-123-UNKNOWN")
	assert.ErrorIs(t, err, domainerrors.ErrOrderNotFound)
}
