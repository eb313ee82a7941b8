package catalog

import (
	"github.com/germani/backend/internal/domain/shared"
)

// Event types for the catalog domain
const (
	EventTypeProductCreated = "catalog.product.created"
	EventTypeStockReserved  = "catalog.stock.reserved"
	EventTypeStockReleased  = "catalog.stock.released"
)

// ProductCreatedEvent is raised when a new product enters the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID),
		Name:            product.Name,
		StockQuantity:   product.StockQuantity,
	}
}

// StockReservedEvent is raised when stock is taken from a product
type StockReservedEvent struct {
	shared.BaseDomainEvent
	Quantity  int `json:"quantity"`
	Remaining int `json:"remaining"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(product *Product, qty int) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, "Product", product.ID),
		Quantity:        qty,
		Remaining:       product.StockQuantity,
	}
}

// StockReleasedEvent is raised when stock is returned to a product
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	Quantity  int `json:"quantity"`
	Remaining int `json:"remaining"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(product *Product, qty int) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, "Product", product.ID),
		Quantity:        qty,
		Remaining:       product.StockQuantity,
	}
}
