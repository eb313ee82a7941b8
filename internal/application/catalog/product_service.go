package catalog

import (
	"context"
	"fmt"

	"github.com/germani/backend/internal/domain/catalog"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService manages the product catalog. Stock adjustments funnel
// through the aggregate's Reserve and Release so that every movement
// obeys the same bounds as sale-driven movements.
type ProductService struct {
	productRepo catalog.ProductRepository
	tx          shared.TransactionManager
	logger      *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo catalog.ProductRepository, tx shared.TransactionManager, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		tx:          tx,
		logger:      logger,
	}
}

// CreateProduct registers a new product
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	salePrice, err := valueobject.NewMoneyFromString(req.SalePrice)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale price is not a valid decimal")
	}
	costPrice := valueobject.Zero()
	if req.CostPrice != "" {
		costPrice, err = valueobject.NewMoneyFromString(req.CostPrice)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Cost price is not a valid decimal")
		}
	}

	product, err := catalog.NewProduct(req.Name, req.Category, salePrice, costPrice, req.StockQuantity, req.LowStockThreshold)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("Created product",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	return NewProductResponse(product), nil
}

// UpdateProduct changes descriptive and pricing fields
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	salePrice, err := valueobject.NewMoneyFromString(req.SalePrice)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale price is not a valid decimal")
	}
	costPrice := valueobject.Zero()
	if req.CostPrice != "" {
		costPrice, err = valueobject.NewMoneyFromString(req.CostPrice)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Cost price is not a valid decimal")
		}
	}

	var resp *ProductResponse
	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := product.UpdateDetails(req.Name, req.Category, salePrice, costPrice, req.LowStockThreshold); err != nil {
			return err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to save product: %w", err)
		}
		resp = NewProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AdjustStock moves stock in or out through the reserve/release funnel.
// Positive delta receives stock; negative delta removes it and fails
// when not enough is available.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	var resp *ProductResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.Delta > 0 {
			err = product.Release(req.Delta)
		} else {
			err = product.Reserve(-req.Delta)
		}
		if err != nil {
			return err
		}

		if err := s.productRepo.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to save product: %w", err)
		}
		resp = NewProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Adjusted stock",
		zap.String("product_id", id.String()),
		zap.Int("delta", req.Delta),
	)
	return resp, nil
}

// SetActive toggles a product's availability for sale
func (s *ProductService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*ProductResponse, error) {
	var resp *ProductResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if active {
			product.Activate()
		} else {
			product.Deactivate()
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to save product: %w", err)
		}
		resp = NewProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetProduct loads a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductResponse(product), nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, filter shared.Filter, activeOnly bool) ([]ProductResponse, error) {
	var (
		products []catalog.Product
		err      error
	)
	if activeOnly {
		products, err = s.productRepo.FindActive(ctx, filter)
	} else {
		products, err = s.productRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *NewProductResponse(&products[i])
	}
	return responses, nil
}

// ListLowStock lists active products at or below their threshold
func (s *ProductService) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *NewProductResponse(&products[i])
	}
	return responses, nil
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted product", zap.String("product_id", id.String()))
	return nil
}
