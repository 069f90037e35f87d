package impl

import (
	"context"
	"sync"
	"time"

	"kicks/internal/domain/entity"
	"kicks/internal/domain/repository"
	"kicks/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// memCartRepo is an in-memory CartRepository for testing. It enforces the
// same live-triple uniqueness the real store does.
type memCartRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*entity.CartItem
	products map[uuid.UUID]*entity.Product // joined into ListByUser results
	failNext error                         // returned by the next mutating call, then cleared
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{
		items:    make(map[uuid.UUID]*entity.CartItem),
		products: make(map[uuid.UUID]*entity.Product),
	}
}

func (m *memCartRepo) takeFailure() error {
	err := m.failNext
	m.failNext = nil

	return err
}

func copyItem(item *entity.CartItem) *entity.CartItem {
	cloned := *item

	return &cloned
}

func (m *memCartRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}

	return copyItem(item), nil
}

func (m *memCartRepo) FindByTriple(_ context.Context, userID string, productID uuid.UUID, size string) (*entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.UserID == userID && item.ProductID == productID && item.Size == size {
			return copyItem(item), nil
		}
	}

	return nil, repository.ErrCartItemNotFound
}

func (m *memCartRepo) Create(_ context.Context, item *entity.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	for _, existing := range m.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID && existing.Size == item.Size {
			return repository.ErrDuplicateCartItem
		}
	}

	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	m.items[item.ID] = copyItem(item)

	return nil
}

func (m *memCartRepo) IncrementQuantity(_ context.Context, id uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity += delta

	return nil
}

func (m *memCartRepo) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity

	return nil
}

func (m *memCartRepo) UpdateOwner(_ context.Context, id uuid.UUID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.UserID = userID

	return nil
}

func (m *memCartRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}
	delete(m.items, id)

	return nil
}

func (m *memCartRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, id := range ids {
		delete(m.items, id)
	}

	return nil
}

func (m *memCartRepo) ListByUser(_ context.Context, userID string, scope *entity.SessionScope) ([]*entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var out []*entity.CartItem
	for _, item := range m.items {
		if item.UserID != userID {
			continue
		}
		if item.ExpiresAt != nil && !item.ExpiresAt.After(now) {
			continue
		}
		if scope != nil && item.SessionID != nil && *item.SessionID != scope.Token {
			continue
		}
		cloned := copyItem(item)
		if product, ok := m.products[item.ProductID]; ok {
			cloned.Product = product
		}
		out = append(out, cloned)
	}

	return out, nil
}

func (m *memCartRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, item := range m.items {
		if item.ExpiresAt != nil && !item.ExpiresAt.After(now) {
			delete(m.items, id)
			removed++
		}
	}

	return removed, nil
}

func (m *memCartRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

// memOrderRepo is an in-memory OrderRepository for testing.
type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*entity.Order
	createErr error
	markErr   error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*entity.Order)}
}

func (m *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	for _, line := range order.Lines {
		line.ID = uuid.New()
		line.OrderID = order.ID
	}
	m.orders[order.OrderNo] = order

	return nil
}

func (m *memOrderRepo) FindByOrderNo(_ context.Context, orderNo string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderNo]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cloned := *order

	return &cloned, nil
}

func (m *memOrderRepo) MarkPaid(_ context.Context, orderNo string, paymentKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.markErr != nil {
		return false, m.markErr
	}

	order, ok := m.orders[orderNo]
	if !ok {
		return false, nil
	}
	if order.Status != entity.OrderStatusReady && order.Status != entity.OrderStatusInProgress {
		return false, nil
	}
	order.Status = entity.OrderStatusDone
	order.PaymentKey = &paymentKey

	return true, nil
}

// stubProductRepo serves a fixed catalog.
type stubProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func newStubProductRepo(products ...*entity.Product) *stubProductRepo {
	repo := &stubProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, product := range products {
		repo.products[product.ID] = product
	}

	return repo
}

func (s *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return product, nil
}

func (s *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out = append(out, product)
		}
	}

	return out, nil
}

func (s *stubProductRepo) List(_ context.Context, category string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, product := range s.products {
		if category == "" || product.Category == category {
			out = append(out, product)
		}
	}

	return out, nil
}

func (s *stubProductRepo) Create(_ context.Context, product *entity.Product) error {
	product.ID = uuid.New()
	s.products[product.ID] = product

	return nil
}

// fakeTxManager runs the callback against the test repositories without a
// real transaction.
type fakeTxManager struct {
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

type fakeRepoFactory struct {
	tm *fakeTxManager
}

func (f *fakeRepoFactory) ProductRepo() repository.ProductRepository { return f.tm.productRepo }
func (f *fakeRepoFactory) CartRepo() repository.CartRepository       { return f.tm.cartRepo }
func (f *fakeRepoFactory) OrderRepo() repository.OrderRepository     { return f.tm.orderRepo }

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeRepoFactory{tm: tm})
}

// stubGateway counts confirmations and replays a configured outcome.
type stubGateway struct {
	calls int
	err   error
}

func (g *stubGateway) Confirm(_ context.Context, req service.ConfirmPaymentRequest) (*service.PaymentConfirmation, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}

	return &service.PaymentConfirmation{
		PaymentKey: req.PaymentKey,
		OrderNo:    req.OrderNo,
		Amount:     req.Amount,
		Method:     "CARD",
		ApprovedAt: time.Now(),
	}, nil
}

// stubPublisher records published events.
type stubPublisher struct {
	mu     sync.Mutex
	events []*service.CartEvent
}

func (p *stubPublisher) PublishCartEvent(_ context.Context, event *service.CartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *stubPublisher) Close() error { return nil }

func (p *stubPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, event := range p.events {
		out = append(out, event.Action)
	}

	return out
}

// stubQRService returns a fixed payload.
type stubQRService struct{}

func (stubQRService) GenerateOrderQR(string) ([]byte, error) {
	return []byte("png"), nil
}

// hmacTokenService validates tokens the same way the real implementation does.
type hmacTokenService struct{}

func (hmacTokenService) ValidateToken(tokenString string, secret string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})
}
