package partner

import (
	"strings"
	"time"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SettlementRecord is an append-only audit row written when a debt
// settlement reduces a customer's opening balance. The amount is that
// reduction, not the whole settled total. Records are never updated or
// deleted.
type SettlementRecord struct {
	shared.BaseEntity
	CustomerID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount     valueobject.Money `gorm:"type:decimal(12,2);not null"`
	Note       string            `gorm:"type:varchar(255)"`
	SettledAt  time.Time         `gorm:"not null;index"`
}

// TableName returns the database table name
func (SettlementRecord) TableName() string {
	return "settlement_records"
}

// NewSettlementRecord creates a new settlement audit record
func NewSettlementRecord(customerID uuid.UUID, amount valueobject.Money, note string) (*SettlementRecord, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}

	return &SettlementRecord{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Amount:     amount,
		Note:       strings.TrimSpace(note),
		SettledAt:  time.Now(),
	}, nil
}
