package persistence

import (
	"context"
	"errors"

	"github.com/germani/backend/internal/domain/sales"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// orderedPayments preloads payments in deterministic ledger order
func orderedPayments(db *gorm.DB) *gorm.DB {
	return db.Order("payments.seq ASC")
}

// FindByID finds a sale with its items and payments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := conn(ctx, r.db).
		Preload("Items").
		Preload("Payments", orderedPayments).
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByIDForUpdate loads a sale holding a FOR UPDATE row lock on the
// sale row until the surrounding transaction ends. Items and payments
// are loaded through separate queries and rely on the sale-level lock
// for consistency.
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := conn(ctx, r.db).Where("sale_id = ?", id).Find(&sale.Items).Error; err != nil {
		return nil, err
	}
	if err := conn(ctx, r.db).Where("sale_id = ?", id).Order("seq ASC").Find(&sale.Payments).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindAll finds all sales with filtering
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	var result []sales.Sale
	query := applyFilter(conn(ctx, r.db).Model(&sales.Sale{}), filter).
		Preload("Items").
		Preload("Payments", orderedPayments)
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindByCustomer finds sales owned by a customer
func (r *GormSaleRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	var result []sales.Sale
	query := applyFilter(conn(ctx, r.db).Model(&sales.Sale{}).
		Where("customer_id = ?", customerID), filter).
		Preload("Items").
		Preload("Payments", orderedPayments)
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindByStatus finds sales in the given status
func (r *GormSaleRepository) FindByStatus(ctx context.Context, status sales.SaleStatus, filter shared.Filter) ([]sales.Sale, error) {
	var result []sales.Sale
	query := applyFilter(conn(ctx, r.db).Model(&sales.Sale{}).
		Where("status = ?", status), filter).
		Preload("Items").
		Preload("Payments", orderedPayments)
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Save creates or updates a sale together with its items and payments.
// Items removed from the aggregate are deleted; payments are append-only
// through the aggregate and are saved as they stand.
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	db := conn(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Payments").Save(sale).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(sale.Items))
		for i, item := range sale.Items {
			currentItemIDs[i] = item.ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("sale_id = ? AND id NOT IN ?", sale.ID, currentItemIDs).
				Delete(&sales.SaleItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("sale_id = ?", sale.ID).
				Delete(&sales.SaleItem{}).Error; err != nil {
				return err
			}
		}
		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			if err := tx.Save(&sale.Items[i]).Error; err != nil {
				return err
			}
		}

		for i := range sale.Payments {
			sale.Payments[i].SaleID = sale.ID
			if err := tx.Save(&sale.Payments[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a sale and its owned rows permanently
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&sales.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&sales.SaleItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&sales.Sale{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&sales.Sale{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumDeferredByCustomer totals the deferred payment amounts across all
// of a customer's sales, regardless of sale status
func (r *GormSaleRepository) SumDeferredByCustomer(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).Model(&sales.Payment{}).
		Joins("JOIN sales ON sales.id = payments.sale_id").
		Where("sales.customer_id = ? AND payments.disposition = ?", customerID, sales.DispositionDeferred).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&total).Error
	if err != nil {
		return valueobject.Zero(), err
	}
	return valueobject.NewMoney(total), nil
}

// FindDeferredByCustomerForUpdate loads a customer's deferred payments
// oldest first, locking the payment rows until the transaction ends
func (r *GormSaleRepository) FindDeferredByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) ([]sales.Payment, error) {
	var payments []sales.Payment
	err := conn(ctx, r.db).Model(&sales.Payment{}).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "payments"}}).
		Joins("JOIN sales ON sales.id = payments.sale_id").
		Where("sales.customer_id = ? AND payments.disposition = ?", customerID, sales.DispositionDeferred).
		Order("payments.seq ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// SavePayment persists changes to a single payment row
func (r *GormSaleRepository) SavePayment(ctx context.Context, payment *sales.Payment) error {
	return conn(ctx, r.db).Save(payment).Error
}

// CreatePayment inserts a new payment row
func (r *GormSaleRepository) CreatePayment(ctx context.Context, payment *sales.Payment) error {
	return conn(ctx, r.db).Create(payment).Error
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
