package sales

import (
	"context"
	"testing"
	"time"

	"github.com/germani/backend/internal/domain/catalog"
	"github.com/germani/backend/internal/domain/sales"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockSaleRepository is a mock implementation of SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByStatus(ctx context.Context, status sales.SaleStatus, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) SumDeferredByCustomer(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockSaleRepository) FindDeferredByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) ([]sales.Payment, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]sales.Payment), args.Error(1)
}

func (m *MockSaleRepository) SavePayment(ctx context.Context, payment *sales.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockSaleRepository) CreatePayment(ctx context.Context, payment *sales.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

var _ sales.SaleRepository = (*MockSaleRepository)(nil)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

var _ catalog.ProductRepository = (*MockProductRepository)(nil)

// MockDebtRecomputer is a mock implementation of DebtRecomputer
type MockDebtRecomputer struct {
	mock.Mock
}

func (m *MockDebtRecomputer) Recompute(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

var _ DebtRecomputer = (*MockDebtRecomputer)(nil)

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)

// stubTransactionManager runs the function directly without a database
type stubTransactionManager struct{}

func (stubTransactionManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =============================================================================
// Test Helper Functions
// =============================================================================

func money(s string) valueobject.Money {
	m, err := valueobject.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func createTestProduct(price string, stock int) *catalog.Product {
	product, _ := catalog.NewProduct("Camiseta Polo", "camisetas", money(price), money("0.00"), stock, 2)
	return product
}

func createOpenSale(customerID *uuid.UUID, product *catalog.Product, qty int) *sales.Sale {
	sale, _ := sales.NewSale(customerID, "")
	_ = sale.AddItem(product.ID, product.Name, product.SalePrice, qty)
	return sale
}

type testDeps struct {
	saleRepo    *MockSaleRepository
	productRepo *MockProductRepository
	debt        *MockDebtRecomputer
	store       *MockIdempotencyStore
}

func newTestService(cfg Config, withStore bool) (*SaleService, testDeps) {
	deps := testDeps{
		saleRepo:    new(MockSaleRepository),
		productRepo: new(MockProductRepository),
		debt:        new(MockDebtRecomputer),
	}
	var store shared.IdempotencyStore
	if withStore {
		deps.store = new(MockIdempotencyStore)
		store = deps.store
	}
	service := NewSaleService(
		deps.saleRepo,
		deps.productRepo,
		deps.debt,
		store,
		shared.DefaultIdempotencyConfig(),
		stubTransactionManager{},
		cfg,
		zap.NewNop(),
	)
	return service, deps
}

// =============================================================================
// CreateSale Tests
// =============================================================================

func TestSaleService_CreateSale_WithItems(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 10)
	customerID := uuid.New()

	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	deps.productRepo.On("Save", ctx, product).Return(nil)
	deps.saleRepo.On("Save", ctx, mock.AnythingOfType("*sales.Sale")).Return(nil)

	resp, err := service.CreateSale(ctx, CreateSaleRequest{
		CustomerID: &customerID,
		Items:      []SaleItemRequest{{ProductID: product.ID, Quantity: 3}},
	})

	assert.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, "75.00", resp.Total)
	assert.Equal(t, 7, product.StockQuantity)
	deps.saleRepo.AssertExpectations(t)
}

func TestSaleService_CreateSale_InsufficientStock(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 2)

	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)

	resp, err := service.CreateSale(ctx, CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 3}},
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	deps.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSaleService_CreateSale_InactiveProduct(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 10)
	product.Deactivate()

	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)

	_, err := service.CreateSale(ctx, CreateSaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRODUCT", domainErr.Code)
}

// =============================================================================
// ApplyPayment Tests
// =============================================================================

func TestSaleService_ApplyPayment_RegularPartial_SkipsRecompute(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 10)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)

	resp, err := service.ApplyPayment(ctx, sale.ID, ApplyPaymentRequest{Amount: "20.00", Method: "pix"})

	assert.NoError(t, err)
	assert.False(t, resp.Finalized)
	assert.Equal(t, "open", resp.Sale.Status)
	assert.Equal(t, "30.00", resp.Sale.Balance)
	deps.debt.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
}

func TestSaleService_ApplyPayment_DeferredPartial_Recomputes(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 10)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)
	deps.debt.On("Recompute", ctx, customerID).Return(money("20.00"), nil)

	resp, err := service.ApplyPayment(ctx, sale.ID, ApplyPaymentRequest{Amount: "20.00", Method: "fiado"})

	assert.NoError(t, err)
	assert.False(t, resp.Finalized)
	deps.debt.AssertExpectations(t)
}

func TestSaleService_ApplyPayment_Finalizes(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 10)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)
	deps.debt.On("Recompute", ctx, customerID).Return(money("0.00"), nil)

	resp, err := service.ApplyPayment(ctx, sale.ID, ApplyPaymentRequest{Amount: "50.00", Method: "dinheiro"})

	assert.NoError(t, err)
	assert.True(t, resp.Finalized)
	assert.Equal(t, "finalized", resp.Sale.Status)
	deps.debt.AssertExpectations(t)
}

func TestSaleService_ApplyPayment_WalkIn_NoRecompute(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 10)
	sale, _ := sales.NewSale(nil, "Cliente de rua")
	_ = sale.AddItem(product.ID, product.Name, product.SalePrice, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)

	resp, err := service.ApplyPayment(ctx, sale.ID, ApplyPaymentRequest{Amount: "50.00", Method: "dinheiro"})

	assert.NoError(t, err)
	assert.True(t, resp.Finalized)
	deps.debt.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
}

func TestSaleService_ApplyPayment_OverPayment(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 10)
	sale := createOpenSale(nil, product, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)

	_, err := service.ApplyPayment(ctx, sale.ID, ApplyPaymentRequest{Amount: "60.00", Method: "pix"})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OVER_PAYMENT", domainErr.Code)
	deps.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSaleService_ApplyPayment_DuplicateRequest(t *testing.T) {
	service, deps := newTestService(Config{}, true)

	ctx := context.Background()
	deps.store.On("MarkProcessed", ctx, "payment:req-456", mock.AnythingOfType("time.Duration")).Return(false, nil)

	resp, err := service.ApplyPayment(ctx, uuid.New(), ApplyPaymentRequest{
		Amount:         "10.00",
		Method:         "pix",
		IdempotencyKey: "req-456",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_REQUEST", domainErr.Code)
	deps.saleRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

// =============================================================================
// Cancel and Reopen Tests
// =============================================================================

func TestSaleService_Cancel_ReleasesStockAndRecomputes(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 7)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 3)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	deps.productRepo.On("Save", ctx, product).Return(nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)
	deps.debt.On("Recompute", ctx, customerID).Return(money("0.00"), nil)

	resp, err := service.Cancel(ctx, sale.ID)

	assert.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, 10, product.StockQuantity)
	deps.debt.AssertExpectations(t)
}

func TestSaleService_Cancel_AlreadyCancelled_NoOp(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 10)
	sale := createOpenSale(nil, product, 1)
	_, _ = sale.Cancel()

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)

	resp, err := service.Cancel(ctx, sale.ID)

	assert.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	deps.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	deps.productRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestSaleService_Reopen_Success(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 5)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 2)
	_, _ = sale.Cancel()

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	deps.productRepo.On("Save", ctx, product).Return(nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)
	deps.debt.On("Recompute", ctx, customerID).Return(money("0.00"), nil)

	resp, err := service.Reopen(ctx, sale.ID)

	assert.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, 3, product.StockQuantity)
}

func TestSaleService_Reopen_InsufficientStock_Aborts(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 1)
	sale := createOpenSale(nil, product, 2)
	_, _ = sale.Cancel()

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)

	_, err := service.Reopen(ctx, sale.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	deps.saleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSaleService_Reopen_FromFinalized_SkipsStockReservation(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 5)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 2)
	_, finalized, err := sale.ApplyPayment(money("50.00"), "fiado", "")
	require.NoError(t, err)
	require.True(t, finalized)
	stockBefore := product.StockQuantity

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)
	deps.debt.On("Recompute", ctx, customerID).Return(money("0.00"), nil)

	resp, err := service.Reopen(ctx, sale.ID)

	assert.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.Equal(t, stockBefore, product.StockQuantity)
	deps.productRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	deps.debt.AssertNumberOfCalls(t, "Recompute", 1)
}

func TestSaleService_Reopen_OpenSale_Rejected(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 10)
	sale := createOpenSale(nil, product, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)

	_, err := service.Reopen(ctx, sale.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

// =============================================================================
// Delete Tests
// =============================================================================

func TestSaleService_Delete_FinalizedReleasesStock(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 7)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 3)
	_, _, _ = sale.ApplyPayment(money("150.00"), "dinheiro", "")

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	deps.productRepo.On("Save", ctx, product).Return(nil)
	deps.saleRepo.On("Delete", ctx, sale.ID).Return(nil)

	err := service.Delete(ctx, sale.ID)

	assert.NoError(t, err)
	assert.Equal(t, 10, product.StockQuantity)
	deps.debt.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
}

func TestSaleService_Delete_RecomputeWhenConfigured(t *testing.T) {
	service, deps := newTestService(Config{RecomputeOnDelete: true}, false)

	ctx := context.Background()
	product := createTestProduct("50.00", 10)
	customerID := uuid.New()
	sale := createOpenSale(&customerID, product, 1)

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.saleRepo.On("Delete", ctx, sale.ID).Return(nil)
	deps.debt.On("Recompute", ctx, customerID).Return(money("0.00"), nil)

	err := service.Delete(ctx, sale.ID)

	assert.NoError(t, err)
	deps.debt.AssertExpectations(t)
}

// =============================================================================
// Item Mutation Tests
// =============================================================================

func TestSaleService_ChangeItemQuantity_ReleasesDelta(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 5)
	sale := createOpenSale(nil, product, 5)
	itemID := sale.Items[0].ID

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	deps.productRepo.On("Save", ctx, product).Return(nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)

	resp, err := service.ChangeItemQuantity(ctx, sale.ID, itemID, ChangeItemQuantityRequest{Quantity: 2})

	assert.NoError(t, err)
	assert.Equal(t, "50.00", resp.Total)
	assert.Equal(t, 8, product.StockQuantity)
}

func TestSaleService_RemoveItem_ReturnsStock(t *testing.T) {
	service, deps := newTestService(Config{}, false)

	ctx := context.Background()
	product := createTestProduct("25.00", 7)
	sale := createOpenSale(nil, product, 3)
	itemID := sale.Items[0].ID

	deps.saleRepo.On("FindByIDForUpdate", ctx, sale.ID).Return(sale, nil)
	deps.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	deps.productRepo.On("Save", ctx, product).Return(nil)
	deps.saleRepo.On("Save", ctx, sale).Return(nil)

	resp, err := service.RemoveItem(ctx, sale.ID, itemID)

	assert.NoError(t, err)
	assert.Len(t, resp.Items, 0)
	assert.Equal(t, "0.00", resp.Total)
	assert.Equal(t, 10, product.StockQuantity)
}
