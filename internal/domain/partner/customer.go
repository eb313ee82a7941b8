package partner

import (
	"strings"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// Customer is the aggregate root for store customers. Debt is a cached
// derived value: it is never incremented in place, only replaced by a
// full recomputation of opening balance plus outstanding deferred
// payments. OpeningBalance carries debt the customer brought in before
// the system existed and shrinks only through settlements.
type Customer struct {
	shared.BaseAggregateRoot
	Name           string            `gorm:"type:varchar(150);not null"`
	Nickname       string            `gorm:"type:varchar(100)"`
	Phone          string            `gorm:"type:varchar(30)"`
	OpeningBalance valueobject.Money `gorm:"type:decimal(12,2);not null;default:0"`
	Debt           valueobject.Money `gorm:"type:decimal(12,2);not null;default:0"`
	DeletedAt      gorm.DeletedAt    `gorm:"index"`
}

// TableName returns the database table name
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer. The opening balance seeds the
// cached debt until the first recomputation.
func NewCustomer(name, nickname, phone string, openingBalance valueobject.Money) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name is required")
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Nickname:          strings.TrimSpace(nickname),
		Phone:             strings.TrimSpace(phone),
		OpeningBalance:    openingBalance,
		Debt:              openingBalance,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))
	return customer, nil
}

// UpdateDetails changes the descriptive fields
func (c *Customer) UpdateDetails(name, nickname, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name is required")
	}

	c.Name = name
	c.Nickname = strings.TrimSpace(nickname)
	c.Phone = strings.TrimSpace(phone)
	return nil
}

// SetOpeningBalance replaces the opening balance. The caller must
// recompute the cached debt afterwards.
func (c *Customer) SetOpeningBalance(balance valueobject.Money) error {
	if balance.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}
	c.OpeningBalance = balance
	return nil
}

// ReduceOpeningBalance subtracts a settled amount from the opening
// balance. The amount may not exceed what is left.
func (c *Customer) ReduceOpeningBalance(amount valueobject.Money) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reduction cannot be negative")
	}
	if amount.GreaterThan(c.OpeningBalance) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reduction exceeds opening balance")
	}
	c.OpeningBalance = c.OpeningBalance.Sub(amount)
	return nil
}

// ApplyDebtSnapshot replaces the cached debt with a freshly recomputed
// total. Emits an event only when the value actually changes.
func (c *Customer) ApplyDebtSnapshot(total valueobject.Money) {
	if c.Debt.Equals(total) {
		return
	}
	previous := c.Debt
	c.Debt = total
	c.AddDomainEvent(NewCustomerDebtChangedEvent(c, previous))
}

// HasDebt reports whether the customer currently owes anything
func (c *Customer) HasDebt() bool {
	return c.Debt.IsPositive()
}
