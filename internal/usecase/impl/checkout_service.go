package impl

import (
	"context"
	"log/slog"
	"strconv"

	deliverycontext "kicks/internal/delivery/context"
	"kicks/internal/domain/entity"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/domain/repository"
	"kicks/internal/domain/service"
	"kicks/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// checkoutService implements the CheckoutUsecase interface.
type checkoutService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	gateway   service.PaymentGateway
	qrSvc     service.QRCodeService
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(
	txManager repository.TransactionManager,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	gateway service.PaymentGateway,
	qrSvc service.QRCodeService,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.CheckoutUsecase {
	return &checkoutService{
		txManager: txManager,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		gateway:   gateway,
		qrSvc:     qrSvc,
		publisher: publisher,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder freezes current prices into an immutable order with all lines
// written in one transaction. Validation happens before anything is persisted.
func (srv *checkoutService) CreateOrder(ctx context.Context, p entity.Principal, input usecase.CreateOrderInput) (*entity.Order, error) {
	if !p.Valid() {
		return nil, domainerrors.ErrForbidden.WrapMessage("invalid principal")
	}
	if len(input.Lines) == 0 {
		return nil, domainerrors.ErrEmptyOrder
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, domainerrors.ErrInvalidQuantity
		}
	}

	order := &entity.Order{
		UserID:  p.ID,
		OrderNo: entity.NewOrderNo(),
		Status:  entity.OrderStatusReady,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		products, err := srv.resolveProducts(ctx, repoFactory.ProductRepo(), input.Lines)
		if err != nil {
			return err
		}

		var total int64
		lines := make([]*entity.OrderLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			product := products[line.ProductID]
			orderLine := &entity.OrderLine{
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				Size:       line.Size,
				UnitPrice:  product.Price,
				CartItemID: line.CartItemID,
			}
			total += orderLine.LineTotal()
			lines = append(lines, orderLine)
		}

		order.Amount = total
		order.Lines = lines

		if err := repoFactory.OrderRepo().Create(ctx, order); err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Order creation failed", slog.Any("error", err), slog.String("user_id", p.ID))

		return nil, err
	}

	srv.log(ctx).Info("Order created",
		slog.String("order_no", order.OrderNo),
		slog.String("user_id", p.ID),
		slog.Int64("amount", order.Amount),
		slog.Int("lines", len(order.Lines)),
	)

	return order, nil
}

// resolveProducts loads every referenced product, failing on the first line
// whose product does not exist.
func (srv *checkoutService) resolveProducts(ctx context.Context, productRepo repository.ProductRepository, lines []usecase.OrderLineInput) (map[uuid.UUID]*entity.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load products")
	}

	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, domainerrors.ErrProductNotFound.WrapMessage("order line references missing product " + line.ProductID.String())
		}
	}

	return byID, nil
}

// CreateOrderFromCart snapshots the principal's current cart into an order.
// Lines keep back-references to their cart rows so confirmation can retire them.
func (srv *checkoutService) CreateOrderFromCart(ctx context.Context, p entity.Principal) (*entity.Order, error) {
	items, err := srv.cartRepo.ListByUser(ctx, p.ID, p.Session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot cart")
	}

	lines := make([]usecase.OrderLineInput, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, usecase.OrderLineInput{
			ProductID:  item.ProductID,
			Size:       item.Size,
			Quantity:   item.Quantity,
			CartItemID: &item.ID,
		})
	}
	if len(lines) == 0 {
		return nil, domainerrors.ErrEmptyOrder
	}

	return srv.CreateOrder(ctx, p, usecase.CreateOrderInput{Lines: lines})
}

// ConfirmPayment finalizes an order after the gateway approves the charge.
//
// Order of checks matters: the idempotency guard and the amount check both run
// before any gateway call, so a duplicate callback issues zero charges and a
// mismatched amount is never approved.
func (srv *checkoutService) ConfirmPayment(ctx context.Context, input usecase.ConfirmPaymentInput) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByOrderNo(ctx, input.OrderNo)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	if order.Status == entity.OrderStatusDone {
		srv.log(ctx).Info("Duplicate payment confirmation, returning finalized order",
			slog.String("order_no", order.OrderNo),
		)

		return order, nil
	}
	if order.Status == entity.OrderStatusCanceled {
		return nil, domainerrors.ErrOrderCanceled
	}

	if input.Amount != order.Amount {
		return nil, domainerrors.ErrAmountMismatch.WithDetails(
			"expected " + strconv.FormatInt(order.Amount, 10) + ", got " + strconv.FormatInt(input.Amount, 10),
		)
	}

	confirmation, err := srv.gateway.Confirm(ctx, service.ConfirmPaymentRequest{
		OrderNo:    input.OrderNo,
		PaymentKey: input.PaymentKey,
		Amount:     input.Amount,
	})
	if err != nil {
		// The order stays in its current status: a rejected charge is retried
		// only by the user repeating checkout, and an unknown outcome (timeout)
		// must remain safely re-invokable.
		srv.log(ctx).Error("Payment confirmation failed",
			slog.Any("error", err),
			slog.String("order_no", input.OrderNo),
		)

		return nil, err
	}

	updated, err := srv.orderRepo.MarkPaid(ctx, order.OrderNo, confirmation.PaymentKey)
	if err != nil {
		// Payment is captured; surface the store failure so the caller can
		// re-invoke. The DONE transition will succeed on retry without a
		// second charge thanks to the gateway's own idempotency on paymentKey.
		return nil, errors.Wrap(err, "payment captured but order update failed")
	}
	if !updated {
		// A concurrent confirmation finalized first; adopt its result.
		finalized, err := srv.orderRepo.FindByOrderNo(ctx, order.OrderNo)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reload finalized order")
		}

		return finalized, nil
	}

	order.Status = entity.OrderStatusDone
	order.PaymentKey = &confirmation.PaymentKey

	srv.retireCartRows(ctx, order)

	srv.log(ctx).Info("Payment confirmed",
		slog.String("order_no", order.OrderNo),
		slog.Int64("amount", order.Amount),
	)

	return order, nil
}

// retireCartRows deletes the cart rows consumed by a finalized order. Only
// cart-originated lines carry a back-reference; buy-now lines are skipped.
// Failures are logged and swallowed: the payment is captured and stale cart
// rows are acceptable residual state, never a rollback trigger.
func (srv *checkoutService) retireCartRows(ctx context.Context, order *entity.Order) {
	ids := make([]uuid.UUID, 0, len(order.Lines))
	for _, line := range order.Lines {
		if line.CartItemID != nil {
			ids = append(ids, *line.CartItemID)
		}
	}
	if len(ids) == 0 {
		return
	}

	if err := srv.cartRepo.DeleteByIDs(ctx, ids); err != nil {
		srv.log(ctx).Warn("Failed to retire consumed cart rows",
			slog.Any("error", err),
			slog.String("order_no", order.OrderNo),
			slog.Int("rows", len(ids)),
		)

		return
	}

	event := &service.CartEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		UserID:    order.UserID,
		Action:    service.CartActionCleared,
	}
	if err := srv.publisher.PublishCartEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish cart event", slog.Any("error", err))
	}
}

// GetOrder retrieves an order with its lines by order number.
func (srv *checkoutService) GetOrder(ctx context.Context, orderNo string) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, domainerrors.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return order, nil
}

// OrderQR renders the order number as a QR PNG for the pickup counter.
func (srv *checkoutService) OrderQR(ctx context.Context, orderNo string) ([]byte, error) {
	order, err := srv.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrSvc.GenerateOrderQR(order.OrderNo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render order QR")
	}

	return png, nil
}
