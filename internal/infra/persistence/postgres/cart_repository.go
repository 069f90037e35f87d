package postgres

import (
	"context"
	"time"

	"kicks/internal/domain/entity"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/domain/repository"
	"kicks/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// cartRepository implements the domain.CartRepository interface using GORM.
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// FindByID retrieves a single cart row by its unique ID.
func (repo *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CartItem, error) {
	var itemM model.CartItemModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&itemM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart item by id")
	}

	return toCartItemDomain(&itemM), nil
}

// FindByTriple retrieves the live row for (userID, productID, size), if any.
func (repo *cartRepository) FindByTriple(ctx context.Context, userID string, productID uuid.UUID, size string) (*entity.CartItem, error) {
	var itemM model.CartItemModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		First(&itemM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart item by owner, product and size")
	}

	return toCartItemDomain(&itemM), nil
}

// Create persists a new cart row. A live row for the same triple surfaces as
// ErrDuplicateCartItem so the caller can fold the lost insert race into an
// increment.
func (repo *cartRepository) Create(ctx context.Context, item *entity.CartItem) error {
	itemM := fromCartItemDomain(item)

	if err := repo.db.WithContext(ctx).Omit("Product").Create(itemM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateCartItem
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrProductNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required cart item information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create cart item")
	}

	item.ID = itemM.ID
	item.CreatedAt = itemM.CreatedAt

	return nil
}

// IncrementQuantity atomically adds delta to the row's quantity. The addition
// happens inside the database so concurrent increments never lose updates.
func (repo *cartRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to increment cart item quantity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartItemNotFound
	}

	return nil
}

// UpdateQuantity sets the row's quantity to an absolute value.
func (repo *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Where("id = ?", id).
		UpdateColumn("quantity", quantity)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update cart item quantity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartItemNotFound
	}

	return nil
}

// UpdateOwner re-keys the row to a different principal id.
func (repo *cartRepository) UpdateOwner(ctx context.Context, id uuid.UUID, userID string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Where("id = ?", id).
		UpdateColumn("user_id", userID)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateCartItem
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update cart item owner")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartItemNotFound
	}

	return nil
}

// Delete removes the row unconditionally. Absent rows are a no-op.
func (repo *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.CartItemModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete cart item")
	}

	return nil
}

// DeleteByIDs removes the given rows in one statement.
func (repo *cartRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.CartItemModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete cart items")
	}

	return nil
}

// ListByUser retrieves all live rows for the principal id joined with their
// products, newest-first. Expired rows are filtered at read time so a stale
// sweep never resurrects them.
func (repo *cartRepository) ListByUser(ctx context.Context, userID string, scope *entity.SessionScope) ([]*entity.CartItem, error) {
	query := repo.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())

	// Rows with a NULL session id predate session scoping and stay visible.
	if scope != nil {
		query = query.Where("session_id IS NULL OR session_id = ?", scope.Token)
	}

	var itemMs []*model.CartItemModel
	if err := query.Order("created_at DESC").Find(&itemMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list cart items")
	}

	items := make([]*entity.CartItem, 0, len(itemMs))
	for _, itemM := range itemMs {
		items = append(items, toCartItemDomain(itemM))
	}

	return items, nil
}

// DeleteExpired removes every row whose expiry timestamp is in the past.
func (repo *cartRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&model.CartItemModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete expired cart items")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

func toCartItemDomain(itemM *model.CartItemModel) *entity.CartItem {
	item := &entity.CartItem{
		ID:        itemM.ID,
		UserID:    itemM.UserID,
		ProductID: itemM.ProductID,
		Quantity:  itemM.Quantity,
		Size:      itemM.Size,
		SessionID: itemM.SessionID,
		ExpiresAt: itemM.ExpiresAt,
		CreatedAt: itemM.CreatedAt,
	}
	if itemM.Product != nil {
		item.Product = toProductDomain(itemM.Product)
	}

	return item
}

func fromCartItemDomain(item *entity.CartItem) *model.CartItemModel {
	return &model.CartItemModel{
		ID:        item.ID,
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Size:      item.Size,
		SessionID: item.SessionID,
		ExpiresAt: item.ExpiresAt,
		CreatedAt: item.CreatedAt,
	}
}
