package debt

import (
	"time"

	"github.com/germani/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// SettleRequest asks to clear part or all of a customer's debt.
// Amount is a decimal string; empty means settle the full debt.
type SettleRequest struct {
	Amount         string `json:"amount" binding:"omitempty,money"`
	Note           string `json:"note"`
	IdempotencyKey string `json:"-"`
}

// SettleResponse reports the outcome of a settlement
type SettleResponse struct {
	CustomerID      uuid.UUID `json:"customer_id"`
	ClearedAmount   string    `json:"cleared_amount"`
	DebtBefore      string    `json:"debt_before"`
	DebtAfter       string    `json:"debt_after"`
	PaymentsSettled int       `json:"payments_settled"`
	PaymentSplit    bool      `json:"payment_split"`
}

// SettlementRecordResponse is one row of the settlement audit log
type SettlementRecordResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     string    `json:"amount"`
	Note       string    `json:"note,omitempty"`
	SettledAt  time.Time `json:"settled_at"`
}

// NewSettlementRecordResponse maps a domain record to its response
func NewSettlementRecordResponse(record *partner.SettlementRecord) SettlementRecordResponse {
	return SettlementRecordResponse{
		ID:         record.ID,
		CustomerID: record.CustomerID,
		Amount:     record.Amount.String(),
		Note:       record.Note,
		SettledAt:  record.SettledAt,
	}
}
