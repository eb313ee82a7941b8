package sales

import (
	"fmt"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentSplit describes a deferred payment that is partially cleared:
// the original payment shrinks to Remaining and stays deferred, and a new
// settled payment for Settled is recorded on the same sale.
type PaymentSplit struct {
	PaymentID uuid.UUID
	SaleID    uuid.UUID
	Settled   valueobject.Money
	Remaining valueobject.Money
}

// SettlementPlan is the allocation of a settlement amount across a
// customer's deferred payments and opening balance. It is produced by
// PlanSettlement and applied by the debt service inside a transaction.
type SettlementPlan struct {
	// SettledWhole lists payments cleared in full, in allocation order
	SettledWhole []uuid.UUID
	// Split is the single partially cleared payment, if any
	Split *PaymentSplit
	// PaymentsCleared is the portion of the amount taken from payments
	PaymentsCleared valueobject.Money
	// OpeningReduction is the portion subtracted from the customer's
	// opening balance after payments are exhausted
	OpeningReduction valueobject.Money
}

// ClearedTotal returns the full amount the plan clears
func (p SettlementPlan) ClearedTotal() valueobject.Money {
	return p.PaymentsCleared.Add(p.OpeningReduction)
}

// PlanSettlement allocates a requested settlement amount against the
// given deferred payments, which must already be ordered oldest first.
// Payments are consumed before the opening balance. At most one payment
// is split; everything before it is cleared whole.
//
// The function performs no I/O and does not mutate its inputs.
func PlanSettlement(deferred []Payment, openingBalance, requested valueobject.Money) (SettlementPlan, error) {
	if !requested.IsPositive() {
		return SettlementPlan{}, shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}

	available := openingBalance
	for i := range deferred {
		available = available.Add(deferred[i].Amount)
	}
	if requested.GreaterThan(available) {
		return SettlementPlan{}, shared.NewDomainError("EXCEEDS_DEBT",
			fmt.Sprintf("Settlement of %s exceeds outstanding debt of %s", requested, available))
	}

	plan := SettlementPlan{
		SettledWhole:     make([]uuid.UUID, 0, len(deferred)),
		PaymentsCleared:  valueobject.Zero(),
		OpeningReduction: valueobject.Zero(),
	}

	remaining := requested
	for i := range deferred {
		if !remaining.IsPositive() {
			break
		}
		p := &deferred[i]
		if p.Amount.LessThanOrEqual(remaining) {
			plan.SettledWhole = append(plan.SettledWhole, p.ID)
			plan.PaymentsCleared = plan.PaymentsCleared.Add(p.Amount)
			remaining = remaining.Sub(p.Amount)
		} else {
			plan.Split = &PaymentSplit{
				PaymentID: p.ID,
				SaleID:    p.SaleID,
				Settled:   remaining,
				Remaining: p.Amount.Sub(remaining),
			}
			plan.PaymentsCleared = plan.PaymentsCleared.Add(remaining)
			remaining = valueobject.Zero()
		}
	}

	if remaining.IsPositive() {
		plan.OpeningReduction = valueobject.Min(remaining, openingBalance)
	}

	return plan, nil
}
