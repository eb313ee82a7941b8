package partner

import (
	"context"
	"fmt"

	"github.com/germani/backend/internal/domain/partner"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebtRecomputer rebuilds a customer's cached debt from its sources
type DebtRecomputer interface {
	Recompute(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error)
}

// CustomerService manages customers. Opening balance edits run the debt
// recomputation in the same transaction so the cached debt never lags
// behind its inputs.
type CustomerService struct {
	customerRepo partner.CustomerRepository
	debt         DebtRecomputer
	tx           shared.TransactionManager
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	debt DebtRecomputer,
	tx shared.TransactionManager,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		debt:         debt,
		tx:           tx,
		logger:       logger,
	}
}

// CreateCustomer registers a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	openingBalance := valueobject.Zero()
	if req.OpeningBalance != "" {
		var err error
		openingBalance, err = valueobject.NewMoneyFromString(req.OpeningBalance)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance is not a valid decimal")
		}
	}

	customer, err := partner.NewCustomer(req.Name, req.Nickname, req.Phone, openingBalance)
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.logger.Info("Created customer",
		zap.String("customer_id", customer.ID.String()),
		zap.String("name", customer.Name),
	)
	return NewCustomerResponse(customer), nil
}

// UpdateCustomer changes descriptive fields
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	var resp *CustomerResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := customer.UpdateDetails(req.Name, req.Nickname, req.Phone); err != nil {
			return err
		}
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return fmt.Errorf("failed to save customer: %w", err)
		}
		resp = NewCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SetOpeningBalance replaces a customer's opening balance and recomputes
// the cached debt in the same transaction
func (s *CustomerService) SetOpeningBalance(ctx context.Context, id uuid.UUID, req SetOpeningBalanceRequest) (*CustomerResponse, error) {
	balance, err := valueobject.NewMoneyFromString(req.OpeningBalance)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance is not a valid decimal")
	}

	var resp *CustomerResponse
	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := customer.SetOpeningBalance(balance); err != nil {
			return err
		}
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return fmt.Errorf("failed to save customer: %w", err)
		}
		if _, err := s.debt.Recompute(ctx, id); err != nil {
			return err
		}

		customer, err = s.customerRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = NewCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updated opening balance",
		zap.String("customer_id", id.String()),
		zap.String("opening_balance", balance.String()),
	)
	return resp, nil
}

// GetCustomer loads a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewCustomerResponse(customer), nil
}

// ListCustomers lists customers with filtering
func (s *CustomerService) ListCustomers(ctx context.Context, filter shared.Filter) ([]CustomerResponse, error) {
	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = *NewCustomerResponse(&customers[i])
	}
	return responses, nil
}

// ListDebtors lists customers with outstanding debt
func (s *CustomerService) ListDebtors(ctx context.Context, filter shared.Filter) ([]CustomerResponse, error) {
	customers, err := s.customerRepo.FindDebtors(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = *NewCustomerResponse(&customers[i])
	}
	return responses, nil
}

// DeleteCustomer soft-deletes a customer. Their sales keep the customer
// reference so history stays intact.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted customer", zap.String("customer_id", id.String()))
	return nil
}
