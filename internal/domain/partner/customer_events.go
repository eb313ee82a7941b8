package partner

import (
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
)

// Event types for the partner domain
const (
	EventTypeCustomerCreated     = "partner.customer.created"
	EventTypeCustomerDebtChanged = "partner.customer.debt_changed"
	EventTypeDebtSettled         = "partner.customer.debt_settled"
)

// CustomerCreatedEvent is raised when a new customer is registered
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, "Customer", customer.ID),
		Name:            customer.Name,
	}
}

// CustomerDebtChangedEvent is raised when a recomputation lands on a
// different cached debt value
type CustomerDebtChangedEvent struct {
	shared.BaseDomainEvent
	PreviousDebt string `json:"previous_debt"`
	CurrentDebt  string `json:"current_debt"`
}

// NewCustomerDebtChangedEvent creates a new CustomerDebtChangedEvent
func NewCustomerDebtChangedEvent(customer *Customer, previous valueobject.Money) *CustomerDebtChangedEvent {
	return &CustomerDebtChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDebtChanged, "Customer", customer.ID),
		PreviousDebt:    previous.String(),
		CurrentDebt:     customer.Debt.String(),
	}
}

// DebtSettledEvent is raised when a settlement clears part of a
// customer's debt
type DebtSettledEvent struct {
	shared.BaseDomainEvent
	Amount string `json:"amount"`
}

// NewDebtSettledEvent creates a new DebtSettledEvent
func NewDebtSettledEvent(customer *Customer, amount valueobject.Money) *DebtSettledEvent {
	return &DebtSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtSettled, "Customer", customer.ID),
		Amount:          amount.String(),
	}
}
