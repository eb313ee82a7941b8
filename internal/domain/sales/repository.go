package sales

import (
	"context"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SaleRepository defines persistence operations for sales and their
// owned items and payments
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindByIDForUpdate loads a sale holding a row lock for the duration
	// of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Sale, error)
	FindByStatus(ctx context.Context, status SaleStatus, filter shared.Filter) ([]Sale, error)
	Save(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumDeferredByCustomer totals the deferred payment amounts across
	// all of a customer's sales
	SumDeferredByCustomer(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error)
	// FindDeferredByCustomerForUpdate loads a customer's deferred
	// payments oldest first, holding row locks on them
	FindDeferredByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) ([]Payment, error)
	// SavePayment persists a single payment row
	SavePayment(ctx context.Context, payment *Payment) error
	// CreatePayment inserts a new payment row
	CreatePayment(ctx context.Context, payment *Payment) error
}
