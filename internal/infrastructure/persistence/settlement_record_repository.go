package persistence

import (
	"context"

	"github.com/germani/backend/internal/domain/partner"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettlementRecordRepository implements the append-only settlement
// audit log using GORM. Records are only created and read.
type GormSettlementRecordRepository struct {
	db *gorm.DB
}

// NewGormSettlementRecordRepository creates a new GormSettlementRecordRepository
func NewGormSettlementRecordRepository(db *gorm.DB) *GormSettlementRecordRepository {
	return &GormSettlementRecordRepository{db: db}
}

// Create inserts a new settlement record
func (r *GormSettlementRecordRepository) Create(ctx context.Context, record *partner.SettlementRecord) error {
	return conn(ctx, r.db).Create(record).Error
}

// FindByCustomer lists a customer's settlement records, newest first
func (r *GormSettlementRecordRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]partner.SettlementRecord, error) {
	var records []partner.SettlementRecord
	if err := conn(ctx, r.db).
		Where("customer_id = ?", customerID).
		Order("settled_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

var _ partner.SettlementRecordRepository = (*GormSettlementRecordRepository)(nil)
