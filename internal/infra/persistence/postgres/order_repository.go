package postgres

import (
	"context"

	"kicks/internal/domain/entity"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/domain/repository"
	"kicks/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements the domain.OrderRepository interface using GORM.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists an order together with all of its lines. GORM's Create with
// associations inserts into orders and order_items as one unit; callers run it
// inside txManager.Execute so a partially created order is never observable.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrOrderCreationFailed.WrapMessage("order number already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrOrderCreationFailed.WrapMessage("invalid product reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrOrderCreationFailed.WrapMessage("missing required order information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	for i, lineM := range orderM.Lines {
		order.Lines[i].ID = lineM.ID
		order.Lines[i].OrderID = lineM.OrderID
	}

	return nil
}

// FindByOrderNo retrieves an order with its lines by the external order number.
func (repo *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*entity.Order, error) {
	var orderM model.OrderModel
	if err := repo.db.WithContext(ctx).
		Preload("Lines").
		Where("order_no = ?", orderNo).
		First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by order no")
	}

	return toOrderDomain(&orderM), nil
}

// MarkPaid transitions the order to DONE and records the gateway payment key.
// The WHERE guard on status makes the transition a compare-and-set: when a
// concurrent confirmation already finalized the order no row matches and the
// method reports false without touching anything.
func (repo *orderRepository) MarkPaid(ctx context.Context, orderNo string, paymentKey string) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("order_no = ? AND status IN ?", orderNo, []string{
			string(entity.OrderStatusReady),
			string(entity.OrderStatusInProgress),
		}).
		Updates(map[string]any{
			"status":      string(entity.OrderStatusDone),
			"payment_key": paymentKey,
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark order paid")
	}

	return result.RowsAffected > 0, nil
}

// --- Mapper Functions ---

func toOrderDomain(orderM *model.OrderModel) *entity.Order {
	order := &entity.Order{
		ID:         orderM.ID,
		UserID:     orderM.UserID,
		OrderNo:    orderM.OrderNo,
		Amount:     orderM.Amount,
		Status:     entity.OrderStatus(orderM.Status),
		PaymentKey: orderM.PaymentKey,
		CreatedAt:  orderM.CreatedAt,
	}
	for _, lineM := range orderM.Lines {
		order.Lines = append(order.Lines, &entity.OrderLine{
			ID:         lineM.ID,
			OrderID:    lineM.OrderID,
			ProductID:  lineM.ProductID,
			Quantity:   lineM.Quantity,
			Size:       lineM.Size,
			UnitPrice:  lineM.UnitPrice,
			CartItemID: lineM.CartItemID,
		})
	}

	return order
}

func fromOrderDomain(order *entity.Order) *model.OrderModel {
	orderM := &model.OrderModel{
		ID:         order.ID,
		UserID:     order.UserID,
		OrderNo:    order.OrderNo,
		Amount:     order.Amount,
		Status:     string(order.Status),
		PaymentKey: order.PaymentKey,
		CreatedAt:  order.CreatedAt,
	}
	for _, line := range order.Lines {
		orderM.Lines = append(orderM.Lines, &model.OrderLineModel{
			ID:         line.ID,
			OrderID:    line.OrderID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			Size:       line.Size,
			UnitPrice:  line.UnitPrice,
			CartItemID: line.CartItemID,
		})
	}

	return orderM
}
