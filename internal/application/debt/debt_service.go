package debt

import (
	"context"
	"fmt"

	"github.com/germani/backend/internal/domain/partner"
	"github.com/germani/backend/internal/domain/sales"
	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the customer debt ledger. The cached debt on a customer
// is only ever replaced by Recompute's full recalculation; settlements
// rewrite payment dispositions and shrink the opening balance before
// recomputing.
type Service struct {
	customerRepo partner.CustomerRepository
	saleRepo     sales.SaleRepository
	recordRepo   partner.SettlementRecordRepository
	idempotency  shared.IdempotencyStore
	idempotencyConfig shared.IdempotencyConfig
	tx           shared.TransactionManager
	logger       *zap.Logger
}

// NewService creates a new debt service
func NewService(
	customerRepo partner.CustomerRepository,
	saleRepo sales.SaleRepository,
	recordRepo partner.SettlementRecordRepository,
	idempotency shared.IdempotencyStore,
	idempotencyConfig shared.IdempotencyConfig,
	tx shared.TransactionManager,
	logger *zap.Logger,
) *Service {
	return &Service{
		customerRepo:      customerRepo,
		saleRepo:          saleRepo,
		recordRepo:        recordRepo,
		idempotency:       idempotency,
		idempotencyConfig: idempotencyConfig,
		tx:                tx,
		logger:            logger,
	}
}

// Recompute rebuilds a customer's cached debt from scratch: opening
// balance plus the sum of deferred payments across all their sales. The
// function is idempotent; running it twice in a row changes nothing.
func (s *Service) Recompute(ctx context.Context, customerID uuid.UUID) (valueobject.Money, error) {
	var debt valueobject.Money
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return err
		}

		deferred, err := s.saleRepo.SumDeferredByCustomer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to sum deferred payments: %w", err)
		}

		debt = customer.OpeningBalance.Add(deferred)
		customer.ApplyDebtSnapshot(debt)
		return s.customerRepo.Save(ctx, customer)
	})
	if err != nil {
		return valueobject.Zero(), err
	}

	s.logger.Debug("Recomputed customer debt",
		zap.String("customer_id", customerID.String()),
		zap.String("debt", debt.String()),
	)
	return debt, nil
}

// Settle clears part or all of a customer's debt. Deferred payments are
// consumed oldest first: payments fully covered are relabelled as
// settled, a payment straddling the amount is split, and any leftover
// shrinks the opening balance. An audit record is written only when the
// opening balance actually shrinks, and only for that reduction; the
// relabelled payment rows are the audit trail for the rest.
func (s *Service) Settle(ctx context.Context, customerID uuid.UUID, req SettleRequest) (*SettleResponse, error) {
	if req.IdempotencyKey != "" && s.idempotency != nil && s.idempotencyConfig.Enabled {
		fresh, err := s.idempotency.MarkProcessed(ctx, "settle:"+req.IdempotencyKey, s.idempotencyConfig.TTL)
		if err != nil {
			s.logger.Warn("Idempotency check failed, continuing", zap.Error(err))
		} else if !fresh {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "Settlement was already processed")
		}
	}

	var resp *SettleResponse
	err := s.tx.Execute(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return err
		}

		payments, err := s.saleRepo.FindDeferredByCustomerForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to load deferred payments: %w", err)
		}

		debtBefore := customer.OpeningBalance
		for i := range payments {
			debtBefore = debtBefore.Add(payments[i].Amount)
		}

		requested := debtBefore
		if req.Amount != "" {
			requested, err = valueobject.NewMoneyFromString(req.Amount)
			if err != nil {
				return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount is not a valid decimal")
			}
		} else if !debtBefore.IsPositive() {
			// Full settle of a debt-free customer clears nothing
			resp = &SettleResponse{
				CustomerID:      customerID,
				ClearedAmount:   valueobject.Zero().String(),
				DebtBefore:      debtBefore.String(),
				DebtAfter:       debtBefore.String(),
				PaymentsSettled: 0,
				PaymentSplit:    false,
			}
			return nil
		}

		plan, err := sales.PlanSettlement(payments, customer.OpeningBalance, requested)
		if err != nil {
			return err
		}

		if err := s.applyPlan(ctx, payments, plan); err != nil {
			return err
		}

		if plan.OpeningReduction.IsPositive() {
			if err := customer.ReduceOpeningBalance(plan.OpeningReduction); err != nil {
				return err
			}

			record, err := partner.NewSettlementRecord(customerID, plan.OpeningReduction, req.Note)
			if err != nil {
				return err
			}
			if err := s.recordRepo.Create(ctx, record); err != nil {
				return fmt.Errorf("failed to write settlement record: %w", err)
			}
		}

		deferred, err := s.saleRepo.SumDeferredByCustomer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to sum deferred payments: %w", err)
		}
		debtAfter := customer.OpeningBalance.Add(deferred)
		customer.ApplyDebtSnapshot(debtAfter)
		customer.AddDomainEvent(partner.NewDebtSettledEvent(customer, plan.ClearedTotal()))
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return err
		}

		resp = &SettleResponse{
			CustomerID:      customerID,
			ClearedAmount:   plan.ClearedTotal().String(),
			DebtBefore:      debtBefore.String(),
			DebtAfter:       debtAfter.String(),
			PaymentsSettled: len(plan.SettledWhole),
			PaymentSplit:    plan.Split != nil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Settled customer debt",
		zap.String("customer_id", customerID.String()),
		zap.String("cleared", resp.ClearedAmount),
		zap.String("debt_after", resp.DebtAfter),
	)
	return resp, nil
}

// applyPlan rewrites payment rows according to the settlement plan
func (s *Service) applyPlan(ctx context.Context, payments []sales.Payment, plan sales.SettlementPlan) error {
	byID := make(map[uuid.UUID]*sales.Payment, len(payments))
	for i := range payments {
		byID[payments[i].ID] = &payments[i]
	}

	for _, id := range plan.SettledWhole {
		payment, ok := byID[id]
		if !ok {
			return shared.NewDomainError("INVALID_STATE", "Settlement plan references unknown payment")
		}
		payment.MarkSettled("Dívida quitada")
		if err := s.saleRepo.SavePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to settle payment: %w", err)
		}
	}

	if plan.Split != nil {
		original, ok := byID[plan.Split.PaymentID]
		if !ok {
			return shared.NewDomainError("INVALID_STATE", "Settlement plan references unknown payment")
		}

		settled := sales.Payment{
			BaseEntity:  shared.NewBaseEntity(),
			SaleID:      plan.Split.SaleID,
			Amount:      plan.Split.Settled,
			Method:      sales.MethodSettled,
			Disposition: sales.DispositionSettled,
			Note:        fmt.Sprintf("Quitação parcial (original: %s)", original.Amount),
		}
		if err := s.saleRepo.CreatePayment(ctx, &settled); err != nil {
			return fmt.Errorf("failed to create split payment: %w", err)
		}

		original.Amount = plan.Split.Remaining
		if err := s.saleRepo.SavePayment(ctx, original); err != nil {
			return fmt.Errorf("failed to shrink split payment: %w", err)
		}
	}

	return nil
}

// History lists a customer's settlement audit records, newest first
func (s *Service) History(ctx context.Context, customerID uuid.UUID) ([]SettlementRecordResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	records, err := s.recordRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]SettlementRecordResponse, len(records))
	for i := range records {
		responses[i] = NewSettlementRecordResponse(&records[i])
	}
	return responses, nil
}
