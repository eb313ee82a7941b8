package sales

import (
	"github.com/germani/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the sales domain
const (
	EventTypeSaleCreated     = "sales.sale.created"
	EventTypeSaleItemAdded   = "sales.item.added"
	EventTypeSaleItemRemoved = "sales.item.removed"
	EventTypePaymentApplied  = "sales.payment.applied"
	EventTypeSaleFinalized   = "sales.sale.finalized"
	EventTypeSaleCancelled   = "sales.sale.cancelled"
	EventTypeSaleReopened    = "sales.sale.reopened"
)

// SaleCreatedEvent is raised when a new sale is opened
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, "Sale", sale.ID),
		CustomerID:      sale.CustomerID,
	}
}

// SaleItemAddedEvent is raised when units of a product join a sale
type SaleItemAddedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// NewSaleItemAddedEvent creates a new SaleItemAddedEvent
func NewSaleItemAddedEvent(sale *Sale, productID uuid.UUID, qty int) *SaleItemAddedEvent {
	return &SaleItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleItemAdded, "Sale", sale.ID),
		ProductID:       productID,
		Quantity:        qty,
	}
}

// SaleItemRemovedEvent is raised when a line leaves a sale
type SaleItemRemovedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// NewSaleItemRemovedEvent creates a new SaleItemRemovedEvent
func NewSaleItemRemovedEvent(sale *Sale, productID uuid.UUID, qty int) *SaleItemRemovedEvent {
	return &SaleItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleItemRemoved, "Sale", sale.ID),
		ProductID:       productID,
		Quantity:        qty,
	}
}

// PaymentAppliedEvent is raised when a payment is recorded
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID          `json:"payment_id"`
	Amount      string             `json:"amount"`
	Disposition PaymentDisposition `json:"disposition"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(sale *Sale, payment *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, "Sale", sale.ID),
		PaymentID:       payment.ID,
		Amount:          payment.Amount.String(),
		Disposition:     payment.Disposition,
	}
}

// SaleFinalizedEvent is raised when a sale's balance reaches zero
type SaleFinalizedEvent struct {
	shared.BaseDomainEvent
	Total string `json:"total"`
}

// NewSaleFinalizedEvent creates a new SaleFinalizedEvent
func NewSaleFinalizedEvent(sale *Sale) *SaleFinalizedEvent {
	return &SaleFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleFinalized, "Sale", sale.ID),
		Total:           sale.Total().String(),
	}
}

// SaleCancelledEvent is raised when a sale is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, "Sale", sale.ID),
	}
}

// SaleReopenedEvent is raised when a cancelled sale returns to open
type SaleReopenedEvent struct {
	shared.BaseDomainEvent
}

// NewSaleReopenedEvent creates a new SaleReopenedEvent
func NewSaleReopenedEvent(sale *Sale) *SaleReopenedEvent {
	return &SaleReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReopened, "Sale", sale.ID),
	}
}
