package catalog

import (
	"time"

	"github.com/germani/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// CreateProductRequest registers a new product in the catalog
type CreateProductRequest struct {
	Name              string `json:"name" binding:"required"`
	Category          string `json:"category"`
	SalePrice         string `json:"sale_price" binding:"required,money"`
	CostPrice         string `json:"cost_price" binding:"omitempty,money"`
	StockQuantity     int    `json:"stock_quantity" binding:"gte=0"`
	LowStockThreshold int    `json:"low_stock_threshold" binding:"gte=0"`
}

// UpdateProductRequest changes descriptive and pricing fields
type UpdateProductRequest struct {
	Name              string `json:"name" binding:"required"`
	Category          string `json:"category"`
	SalePrice         string `json:"sale_price" binding:"required,money"`
	CostPrice         string `json:"cost_price" binding:"omitempty,money"`
	LowStockThreshold int    `json:"low_stock_threshold" binding:"gte=0"`
}

// AdjustStockRequest moves stock in (positive) or out (negative)
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ProductResponse is the full representation of a product
type ProductResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category,omitempty"`
	SalePrice         string    `json:"sale_price"`
	CostPrice         string    `json:"cost_price"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	LowStock          bool      `json:"low_stock"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewProductResponse maps a product aggregate to its response
func NewProductResponse(product *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:                product.ID,
		Name:              product.Name,
		Category:          product.Category,
		SalePrice:         product.SalePrice.String(),
		CostPrice:         product.CostPrice.String(),
		StockQuantity:     product.StockQuantity,
		LowStockThreshold: product.LowStockThreshold,
		LowStock:          product.IsLowStock(),
		Active:            product.Active,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}
