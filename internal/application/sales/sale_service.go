package sales

import (
	"context"
	"fmt"

	"github.com/germani/backend/internal/domain/catalog"
	"github.com/germani/backend/internal/domain/sales"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebtRecomputer rebuilds a customer's cached debt. Implemented by the
// debt application service.
type DebtRecomputer interface {
	Recompute(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error)
}

// Config holds behavior toggles for the sale service
type Config struct {
	// RecomputeOnDelete triggers a debt recomputation for the owning
	// customer when a sale is deleted. The legacy behavior (false)
	// leaves the cached debt untouched.
	RecomputeOnDelete bool
}

// SaleService orchestrates the sale lifecycle. Every mutation runs in a
// single transaction that locks the sale row, the touched product rows
// and, when debt is affected, the owning customer row.
type SaleService struct {
	saleRepo    sales.SaleRepository
	productRepo catalog.ProductRepository
	debt        DebtRecomputer
	idempotency shared.IdempotencyStore
	idempotencyConfig shared.IdempotencyConfig
	tx          shared.TransactionManager
	cfg         Config
	logger      *zap.Logger
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	debt DebtRecomputer,
	idempotency shared.IdempotencyStore,
	idempotencyConfig shared.IdempotencyConfig,
	tx shared.TransactionManager,
	cfg Config,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:          saleRepo,
		productRepo:       productRepo,
		debt:              debt,
		idempotency:       idempotency,
		idempotencyConfig: idempotencyConfig,
		tx:                tx,
		cfg:               cfg,
		logger:            logger,
	}
}

// CreateSale opens a new sale, reserving stock for any initial items
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := sales.NewSale(req.CustomerID, req.WalkInName)
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			if err := s.reserveAndAdd(ctx, sale, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		resp = NewSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created sale", zap.String("sale_id", resp.ID.String()))
	return resp, nil
}

// reserveAndAdd locks the product, reserves stock and adds the line
func (s *SaleService) reserveAndAdd(ctx context.Context, sale *sales.Sale, productID uuid.UUID, qty int) error {
	product, err := s.productRepo.FindByIDForUpdate(ctx, productID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return err
	}
	if !product.Active {
		return shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Product %s is not available for sale", product.Name))
	}

	if err := product.Reserve(qty); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product stock: %w", err)
	}

	return sale.AddItem(product.ID, product.Name, product.SalePrice, qty)
}

// AddItem adds units of a product to an open sale
func (s *SaleService) AddItem(ctx context.Context, saleID uuid.UUID, req SaleItemRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		if err := s.reserveAndAdd(ctx, sale, req.ProductID, req.Quantity); err != nil {
			return err
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		resp = NewSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ChangeItemQuantity sets a line's quantity, moving only the stock delta
func (s *SaleService) ChangeItemQuantity(ctx context.Context, saleID, itemID uuid.UUID, req ChangeItemQuantityRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		item := sale.FindItem(itemID)
		if item == nil {
			return shared.NewDomainError("ITEM_NOT_FOUND", "Sale item not found")
		}
		productID := item.ProductID

		delta, err := sale.ChangeItemQuantity(itemID, req.Quantity)
		if err != nil {
			return err
		}

		if delta != 0 {
			product, err := s.productRepo.FindByIDForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			if delta > 0 {
				err = product.Reserve(delta)
			} else {
				err = product.Release(-delta)
			}
			if err != nil {
				return err
			}
			if err := s.productRepo.Save(ctx, product); err != nil {
				return fmt.Errorf("failed to save product stock: %w", err)
			}
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		resp = NewSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveItem deletes a line and returns its stock
func (s *SaleService) RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		removed, err := sale.RemoveItem(itemID)
		if err != nil {
			return err
		}

		if err := s.releaseStock(ctx, removed.ProductID, removed.Quantity); err != nil {
			return err
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		resp = NewSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SaleService) releaseStock(ctx context.Context, productID uuid.UUID, qty int) error {
	product, err := s.productRepo.FindByIDForUpdate(ctx, productID)
	if err != nil {
		// A deleted product cannot take its stock back
		if err == shared.ErrNotFound {
			s.logger.Warn("Skipping stock release for missing product",
				zap.String("product_id", productID.String()))
			return nil
		}
		return err
	}
	if err := product.Release(qty); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product stock: %w", err)
	}
	return nil
}

// ApplyPayment records a payment. When the payment finalizes the sale or
// is deferred, the owning customer's debt is recomputed in the same
// transaction.
func (s *SaleService) ApplyPayment(ctx context.Context, saleID uuid.UUID, req ApplyPaymentRequest) (*ApplyPaymentResponse, error) {
	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount is not a valid decimal")
	}

	if req.IdempotencyKey != "" && s.idempotency != nil && s.idempotencyConfig.Enabled {
		fresh, err := s.idempotency.MarkProcessed(ctx, "payment:"+req.IdempotencyKey, s.idempotencyConfig.TTL)
		if err != nil {
			s.logger.Warn("Idempotency check failed, continuing", zap.Error(err))
		} else if !fresh {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "Payment was already processed")
		}
	}

	var resp *ApplyPaymentResponse
	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		payment, finalized, err := sale.ApplyPayment(amount, req.Method, req.Note)
		if err != nil {
			return err
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}

		// Regular payments that keep the sale open never move the debt,
		// so the recomputation is skipped for them
		if sale.CustomerID != nil && (finalized || payment.IsDeferred()) {
			if _, err := s.debt.Recompute(ctx, *sale.CustomerID); err != nil {
				return err
			}
		}

		resp = &ApplyPaymentResponse{
			Sale:      NewSaleResponse(sale),
			PaymentID: payment.ID,
			Finalized: finalized,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Applied payment",
		zap.String("sale_id", saleID.String()),
		zap.String("amount", amount.String()),
		zap.Bool("finalized", resp.Finalized),
	)
	return resp, nil
}

// Cancel moves a sale to cancelled, returning its stock. Cancelling an
// already cancelled sale is a no-op.
func (s *SaleService) Cancel(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		heldStock := sale.HoldsStock()
		changed, err := sale.Cancel()
		if err != nil {
			return err
		}

		if changed {
			if heldStock {
				for i := range sale.Items {
					if err := s.releaseStock(ctx, sale.Items[i].ProductID, sale.Items[i].Quantity); err != nil {
						return err
					}
				}
			}
			if err := s.saleRepo.Save(ctx, sale); err != nil {
				return fmt.Errorf("failed to save sale: %w", err)
			}
			if sale.CustomerID != nil {
				if _, err := s.debt.Recompute(ctx, *sale.CustomerID); err != nil {
					return err
				}
			}
		}

		resp = NewSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancelled sale", zap.String("sale_id", saleID.String()))
	return resp, nil
}

// Reopen moves a finalized or cancelled sale back to open. A cancelled
// sale gave its stock back, so stock is re-reserved for all its items;
// insufficient stock for any item aborts the whole operation and the
// sale stays cancelled. A finalized sale still holds its stock and only
// changes status.
func (s *SaleService) Reopen(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		needsStock := sale.Status == sales.StatusCancelled
		if err := sale.Reopen(); err != nil {
			return err
		}

		if needsStock {
			for i := range sale.Items {
				item := &sale.Items[i]
				product, err := s.productRepo.FindByIDForUpdate(ctx, item.ProductID)
				if err != nil {
					if err == shared.ErrNotFound {
						return shared.NewDomainError("INVALID_PRODUCT",
							fmt.Sprintf("Product %s no longer exists", item.ProductName))
					}
					return err
				}
				if err := product.Reserve(item.Quantity); err != nil {
					return err
				}
				if err := s.productRepo.Save(ctx, product); err != nil {
					return fmt.Errorf("failed to save product stock: %w", err)
				}
			}
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		if sale.CustomerID != nil {
			if _, err := s.debt.Recompute(ctx, *sale.CustomerID); err != nil {
				return err
			}
		}

		resp = NewSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reopened sale", zap.String("sale_id", saleID.String()))
	return resp, nil
}

// Delete removes a sale permanently. A finalized sale still holds its
// stock reservation, so that stock is released first. Whether the
// owning customer's debt is recomputed afterwards is configurable; the
// legacy behavior leaves it stale.
func (s *SaleService) Delete(ctx context.Context, saleID uuid.UUID) error {
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		if sale.Status == sales.StatusFinalized {
			for i := range sale.Items {
				if err := s.releaseStock(ctx, sale.Items[i].ProductID, sale.Items[i].Quantity); err != nil {
					return err
				}
			}
		}

		customerID := sale.CustomerID
		if err := s.saleRepo.Delete(ctx, saleID); err != nil {
			return err
		}

		if s.cfg.RecomputeOnDelete && customerID != nil {
			if _, err := s.debt.Recompute(ctx, *customerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Deleted sale", zap.String("sale_id", saleID.String()))
	return nil
}

// GetSale loads a sale by ID
func (s *SaleService) GetSale(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return NewSaleResponse(sale), nil
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, filter shared.Filter) ([]SaleResponse, error) {
	found, err := s.saleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]SaleResponse, len(found))
	for i := range found {
		responses[i] = *NewSaleResponse(&found[i])
	}
	return responses, nil
}

// ListByCustomer lists a customer's sales
func (s *SaleService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]SaleResponse, error) {
	found, err := s.saleRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]SaleResponse, len(found))
	for i := range found {
		responses[i] = *NewSaleResponse(&found[i])
	}
	return responses, nil
}
