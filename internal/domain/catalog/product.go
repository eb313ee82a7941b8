package catalog

import (
	"fmt"
	"strings"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// Product is the aggregate root for catalog items. Its StockQuantity is
// the single source of truth for inventory: Reserve and Release are the
// only two operations allowed to change it, and every sale-side stock
// movement funnels through them.
type Product struct {
	shared.BaseAggregateRoot
	Name              string            `gorm:"type:varchar(200);not null"`
	Category          string            `gorm:"type:varchar(100);index"`
	SalePrice         valueobject.Money `gorm:"type:decimal(12,2);not null"`
	CostPrice         valueobject.Money `gorm:"type:decimal(12,2);not null"`
	StockQuantity     int               `gorm:"not null;default:0"`
	LowStockThreshold int               `gorm:"not null;default:0"`
	Active            bool              `gorm:"not null;default:true"`
	DeletedAt         gorm.DeletedAt    `gorm:"index"`
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with validation
func NewProduct(name, category string, salePrice, costPrice valueobject.Money, stockQuantity, lowStockThreshold int) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name is required")
	}
	if salePrice.IsNegative() || costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product prices cannot be negative")
	}
	if stockQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}
	if lowStockThreshold < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Low stock threshold cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Category:          strings.TrimSpace(category),
		SalePrice:         salePrice,
		CostPrice:         costPrice,
		StockQuantity:     stockQuantity,
		LowStockThreshold: lowStockThreshold,
		Active:            true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Reserve removes qty units from available stock. It fails when the
// product does not hold enough stock, leaving the quantity untouched.
func (p *Product) Reserve(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if qty > p.StockQuantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", p.Name, qty, p.StockQuantity))
	}

	p.StockQuantity -= qty
	p.AddDomainEvent(NewStockReservedEvent(p, qty))
	return nil
}

// Release returns qty units to available stock
func (p *Product) Release(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	p.StockQuantity += qty
	p.AddDomainEvent(NewStockReleasedEvent(p, qty))
	return nil
}

// UpdateDetails changes the descriptive and pricing fields
func (p *Product) UpdateDetails(name, category string, salePrice, costPrice valueobject.Money, lowStockThreshold int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product name is required")
	}
	if salePrice.IsNegative() || costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRODUCT", "Product prices cannot be negative")
	}
	if lowStockThreshold < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Low stock threshold cannot be negative")
	}

	p.Name = name
	p.Category = strings.TrimSpace(category)
	p.SalePrice = salePrice
	p.CostPrice = costPrice
	p.LowStockThreshold = lowStockThreshold
	return nil
}

// Activate makes the product available for sale
func (p *Product) Activate() {
	p.Active = true
}

// Deactivate hides the product from sale without deleting it
func (p *Product) Deactivate() {
	p.Active = false
}

// IsLowStock reports whether available stock has fallen to or below the
// configured threshold
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}
