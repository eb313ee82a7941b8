package partner

import (
	"context"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// FindByIDForUpdate loads a customer holding a row lock for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	FindDebtors(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// SettlementRecordRepository defines persistence for the append-only
// settlement audit log. Records are only created and read.
type SettlementRecordRepository interface {
	Create(ctx context.Context, record *SettlementRecord) error
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]SettlementRecord, error)
}
