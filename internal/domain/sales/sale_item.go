package sales

import (
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SaleItem is an entity owned by the Sale aggregate. UnitPrice is a
// snapshot of the product's sale price at the moment the item was first
// added; later catalog price changes do not reprice existing sales.
type SaleItem struct {
	shared.BaseEntity
	SaleID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductName string            `gorm:"type:varchar(200);not null"`
	UnitPrice   valueobject.Money `gorm:"type:decimal(12,2);not null"`
	Quantity    int               `gorm:"not null"`
}

// TableName returns the database table name
func (SaleItem) TableName() string {
	return "sale_items"
}

// Subtotal returns unit price times quantity
func (i *SaleItem) Subtotal() valueobject.Money {
	return i.UnitPrice.MulInt(int64(i.Quantity))
}
