package partner

import (
	"context"
	"testing"

	"github.com/germani/backend/internal/domain/partner"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindDebtors(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

var _ partner.CustomerRepository = (*MockCustomerRepository)(nil)

// MockDebtRecomputer is a mock implementation of DebtRecomputer
type MockDebtRecomputer struct {
	mock.Mock
}

func (m *MockDebtRecomputer) Recompute(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

var _ DebtRecomputer = (*MockDebtRecomputer)(nil)

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

func createTestCustomer(opening string) *partner.Customer {
	customer, _ := partner.NewCustomer("João Pereira", "Joãozinho", "11 99999-0000", money(opening))
	return customer
}

func newTestService(mockRepo *MockCustomerRepository, mockDebt *MockDebtRecomputer) *CustomerService {
	return NewCustomerService(mockRepo, mockDebt, stubTransactionManager{}, zap.NewNop())
}

// =============================================================================
// CustomerService Tests
// =============================================================================

func TestCustomerService_Create_Success(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	service := newTestService(mockRepo, new(MockDebtRecomputer))

	ctx := context.Background()
	mockRepo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

	resp, err := service.CreateCustomer(ctx, CreateCustomerRequest{
		Name:           "João Pereira",
		Nickname:       "Joãozinho",
		OpeningBalance: "120.00",
	})

	assert.NoError(t, err)
	assert.Equal(t, "João Pereira", resp.Name)
	assert.Equal(t, "120.00", resp.OpeningBalance)
	assert.Equal(t, "120.00", resp.Debt)
	assert.True(t, resp.HasDebt)
	mockRepo.AssertExpectations(t)
}

func TestCustomerService_Create_DefaultsToZeroBalance(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	service := newTestService(mockRepo, new(MockDebtRecomputer))

	ctx := context.Background()
	mockRepo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

	resp, err := service.CreateCustomer(ctx, CreateCustomerRequest{Name: "Ana"})

	assert.NoError(t, err)
	assert.Equal(t, "0.00", resp.OpeningBalance)
	assert.False(t, resp.HasDebt)
}

func TestCustomerService_Create_NegativeBalance(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	service := newTestService(mockRepo, new(MockDebtRecomputer))

	ctx := context.Background()
	resp, err := service.CreateCustomer(ctx, CreateCustomerRequest{
		Name:           "Ana",
		OpeningBalance: "-10.00",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerService_Update_Success(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	service := newTestService(mockRepo, new(MockDebtRecomputer))

	ctx := context.Background()
	customer := createTestCustomer("0.00")

	mockRepo.On("FindByIDForUpdate", ctx, customer.ID).Return(customer, nil)
	mockRepo.On("Save", ctx, customer).Return(nil)

	resp, err := service.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{
		Name:  "João P. Silva",
		Phone: "11 98888-7777",
	})

	assert.NoError(t, err)
	assert.Equal(t, "João P. Silva", resp.Name)
	assert.Equal(t, "11 98888-7777", resp.Phone)
}

func TestCustomerService_SetOpeningBalance_Recomputes(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	mockDebt := new(MockDebtRecomputer)
	service := newTestService(mockRepo, mockDebt)

	ctx := context.Background()
	customer := createTestCustomer("50.00")

	mockRepo.On("FindByIDForUpdate", ctx, customer.ID).Return(customer, nil)
	mockRepo.On("Save", ctx, customer).Return(nil)
	mockDebt.On("Recompute", ctx, customer.ID).Return(money("80.00"), nil)
	mockRepo.On("FindByID", ctx, customer.ID).Return(customer, nil)

	resp, err := service.SetOpeningBalance(ctx, customer.ID, SetOpeningBalanceRequest{OpeningBalance: "80.00"})

	assert.NoError(t, err)
	assert.Equal(t, "80.00", resp.OpeningBalance)
	mockDebt.AssertExpectations(t)
}

func TestCustomerService_ListDebtors(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	service := newTestService(mockRepo, new(MockDebtRecomputer))

	ctx := context.Background()
	debtor := createTestCustomer("30.00")
	filter := shared.DefaultFilter()

	mockRepo.On("FindDebtors", ctx, filter).Return([]partner.Customer{*debtor}, nil)

	resp, err := service.ListDebtors(ctx, filter)

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.True(t, resp[0].HasDebt)
}

func TestCustomerService_Delete_Success(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	service := newTestService(mockRepo, new(MockDebtRecomputer))

	ctx := context.Background()
	id := uuid.New()
	mockRepo.On("Delete", ctx, id).Return(nil)

	err := service.DeleteCustomer(ctx, id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
