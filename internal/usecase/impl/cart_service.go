package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "kicks/internal/delivery/context"
	"kicks/internal/domain/entity"
	domainerrors "kicks/internal/domain/errors"
	"kicks/internal/domain/repository"
	"kicks/internal/domain/service"
	"kicks/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// cartService implements the CartUsecase interface.
type cartService struct {
	cartRepo  repository.CartRepository
	txManager repository.TransactionManager
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(
	cartRepo repository.CartRepository,
	txManager repository.TransactionManager,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.CartUsecase {
	return &cartService{
		cartRepo:  cartRepo,
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// notify emits a cart-changed event. Best-effort: dependent views refresh on
// it, nothing depends on delivery.
func (srv *cartService) notify(ctx context.Context, event *service.CartEvent) {
	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	if err := srv.publisher.PublishCartEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish cart event",
			slog.Any("error", err),
			slog.String("action", event.Action),
			slog.String("user_id", event.UserID),
		)
	}
}

// AddItem upserts-by-increment for the principal's (product, size) triple.
func (srv *cartService) AddItem(ctx context.Context, p entity.Principal, input usecase.AddCartItemInput) (*entity.CartItem, error) {
	if !p.Valid() {
		return nil, domainerrors.ErrForbidden.WrapMessage("invalid principal")
	}
	if input.Quantity < 1 {
		return nil, domainerrors.ErrInvalidQuantity
	}

	item, err := srv.upsertItem(ctx, p, input)
	if err != nil {
		return nil, err
	}

	srv.notify(ctx, &service.CartEvent{
		UserID:    p.ID,
		Action:    service.CartActionAdded,
		ProductID: input.ProductID.String(),
		Quantity:  item.Quantity,
	})

	return item, nil
}

func (srv *cartService) upsertItem(ctx context.Context, p entity.Principal, input usecase.AddCartItemInput) (*entity.CartItem, error) {
	existing, err := srv.cartRepo.FindByTriple(ctx, p.ID, input.ProductID, input.Size)
	switch {
	case err == nil:
		return srv.incrementExisting(ctx, existing.ID, input.Quantity)

	case errors.Is(err, repository.ErrCartItemNotFound):
		item := &entity.CartItem{
			UserID:    p.ID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			Size:      input.Size,
		}
		createErr := srv.cartRepo.Create(ctx, item)
		if createErr == nil {
			return item, nil
		}
		// A concurrent add for the same triple won the insert; fold into it.
		if errors.Is(createErr, repository.ErrDuplicateCartItem) {
			winner, findErr := srv.cartRepo.FindByTriple(ctx, p.ID, input.ProductID, input.Size)
			if findErr != nil {
				return nil, errors.Wrap(findErr, "failed to find cart item after duplicate insert")
			}

			return srv.incrementExisting(ctx, winner.ID, input.Quantity)
		}

		return nil, createErr

	default:
		return nil, errors.Wrap(err, "failed to look up cart item")
	}
}

func (srv *cartService) incrementExisting(ctx context.Context, id uuid.UUID, delta int) (*entity.CartItem, error) {
	if err := srv.cartRepo.IncrementQuantity(ctx, id, delta); err != nil {
		return nil, errors.Wrap(err, "failed to increment cart quantity")
	}

	item, err := srv.cartRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload cart item")
	}

	return item, nil
}

// SetQuantity sets an absolute quantity; zero or less deletes the row.
func (srv *cartService) SetQuantity(ctx context.Context, p entity.Principal, itemID uuid.UUID, quantity int) (*entity.CartItem, error) {
	item, err := srv.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			// Repeating a delete-by-zero must stay a no-op, and updating a
			// vanished row is not worth failing a page over.
			if quantity < 1 {
				return nil, nil
			}

			return nil, domainerrors.ErrCartItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart item")
	}

	if item.UserID != p.ID {
		return nil, domainerrors.ErrCartOwnership
	}

	if quantity < 1 {
		if err := srv.cartRepo.Delete(ctx, itemID); err != nil {
			return nil, errors.Wrap(err, "failed to delete cart item")
		}
		srv.notify(ctx, &service.CartEvent{
			UserID:    p.ID,
			Action:    service.CartActionRemoved,
			ProductID: item.ProductID.String(),
		})

		return nil, nil
	}

	if err := srv.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, errors.Wrap(err, "failed to update cart quantity")
	}
	item.Quantity = quantity

	srv.notify(ctx, &service.CartEvent{
		UserID:    p.ID,
		Action:    service.CartActionUpdated,
		ProductID: item.ProductID.String(),
		Quantity:  quantity,
	})

	return item, nil
}

// RemoveItem deletes the row unconditionally; absence is a no-op, not an error.
func (srv *cartService) RemoveItem(ctx context.Context, p entity.Principal, itemID uuid.UUID) error {
	item, err := srv.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil
		}

		return errors.Wrap(err, "failed to find cart item")
	}

	if item.UserID != p.ID {
		return domainerrors.ErrCartOwnership
	}

	if err := srv.cartRepo.Delete(ctx, itemID); err != nil {
		return errors.Wrap(err, "failed to delete cart item")
	}

	srv.notify(ctx, &service.CartEvent{
		UserID:    p.ID,
		Action:    service.CartActionRemoved,
		ProductID: item.ProductID.String(),
	})

	return nil
}

// ListCart returns the principal's live rows joined with product data.
func (srv *cartService) ListCart(ctx context.Context, p entity.Principal) ([]*entity.CartItem, error) {
	if !p.Valid() {
		return nil, domainerrors.ErrForbidden.WrapMessage("invalid principal")
	}

	// Opportunistic sweep of expired legacy rows. Not a correctness
	// mechanism: the read below filters expired rows regardless.
	if removed, err := srv.cartRepo.DeleteExpired(ctx, time.Now()); err != nil {
		srv.log(ctx).Warn("Expired cart sweep failed", slog.Any("error", err))
	} else if removed > 0 {
		srv.log(ctx).Debug("Swept expired cart rows", slog.Int64("removed", removed))
	}

	items, err := srv.cartRepo.ListByUser(ctx, p.ID, p.Session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cart items")
	}

	// Defensive join: drop rows whose product vanished from the catalog.
	live := make([]*entity.CartItem, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			srv.log(ctx).Warn("Cart row references missing product",
				slog.String("cart_item_id", item.ID.String()),
				slog.String("product_id", item.ProductID.String()),
			)

			continue
		}
		live = append(live, item)
	}

	return live, nil
}

// MergeCarts re-keys the prior anonymous rows to the authenticated principal,
// consolidating duplicate (product, size) rows by summing quantities.
func (srv *cartService) MergeCarts(ctx context.Context, anonymousID string, target entity.Principal) (int, error) {
	if !target.IsAuthenticated() {
		return 0, domainerrors.ErrLoginRequired
	}
	if anonymousID == "" || anonymousID == target.ID {
		return 0, nil
	}

	var moved int
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.CartRepo()

		anonItems, err := cartRepo.ListByUser(ctx, anonymousID, nil)
		if err != nil {
			return errors.Wrap(err, "failed to list anonymous cart")
		}

		for _, item := range anonItems {
			existing, err := cartRepo.FindByTriple(ctx, target.ID, item.ProductID, item.Size)
			switch {
			case err == nil:
				// Target already holds this triple: fold quantities, retire the
				// anonymous row.
				if err := cartRepo.IncrementQuantity(ctx, existing.ID, item.Quantity); err != nil {
					return errors.Wrap(err, "failed to consolidate quantities")
				}
				if err := cartRepo.Delete(ctx, item.ID); err != nil {
					return errors.Wrap(err, "failed to retire anonymous cart row")
				}

			case errors.Is(err, repository.ErrCartItemNotFound):
				if err := cartRepo.UpdateOwner(ctx, item.ID, target.ID); err != nil {
					return errors.Wrap(err, "failed to re-key cart row")
				}

			default:
				return errors.Wrap(err, "failed to look up target cart row")
			}
			moved++
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Cart merge failed",
			slog.Any("error", err),
			slog.String("anonymous_id", anonymousID),
			slog.String("user_id", target.ID),
		)

		return 0, errors.Wrap(err, "failed to merge carts")
	}

	if moved > 0 {
		srv.log(ctx).Info("Merged anonymous cart",
			slog.String("anonymous_id", anonymousID),
			slog.String("user_id", target.ID),
			slog.Int("rows", moved),
		)
		srv.notify(ctx, &service.CartEvent{
			UserID: target.ID,
			Action: service.CartActionMerged,
		})
	}

	return moved, nil
}

// SweepExpired deletes all rows whose legacy expiry has passed.
func (srv *cartService) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := srv.cartRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to sweep expired cart rows")
	}

	return removed, nil
}
