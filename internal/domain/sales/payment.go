package sales

import (
	"strings"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentDisposition classifies how a payment participates in the debt
// ledger. Deferred payments are promises to pay later and count toward
// the owing customer's debt; settled payments record cleared debt;
// regular payments are immediate tender and never touch the ledger.
type PaymentDisposition string

const (
	DispositionDeferred PaymentDisposition = "deferred"
	DispositionSettled  PaymentDisposition = "settled"
	DispositionRegular  PaymentDisposition = "regular"
)

// IsValid checks if the disposition is a known value
func (d PaymentDisposition) IsValid() bool {
	switch d {
	case DispositionDeferred, DispositionSettled, DispositionRegular:
		return true
	}
	return false
}

// Legacy method labels that map onto dispositions. Matching is
// case-insensitive to accept historical data entered by hand.
const (
	MethodDeferred = "fiado"
	MethodSettled  = "quitado"
)

// DispositionFromMethod derives the ledger disposition from the free-text
// payment method
func DispositionFromMethod(method string) PaymentDisposition {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case MethodDeferred:
		return DispositionDeferred
	case MethodSettled:
		return DispositionSettled
	default:
		return DispositionRegular
	}
}

// Payment is an entity owned by the Sale aggregate. Seq is a
// database-assigned monotonic sequence used to order payments
// deterministically when timestamps tie.
type Payment struct {
	shared.BaseEntity
	SaleID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	Seq         int64              `gorm:"autoIncrement;uniqueIndex"`
	Amount      valueobject.Money  `gorm:"type:decimal(12,2);not null"`
	Method      string             `gorm:"type:varchar(50);not null"`
	Disposition PaymentDisposition `gorm:"type:varchar(20);not null;index"`
	Note        string             `gorm:"type:varchar(255)"`
}

// TableName returns the database table name
func (Payment) TableName() string {
	return "payments"
}

// IsDeferred reports whether this payment counts toward customer debt
func (p *Payment) IsDeferred() bool {
	return p.Disposition == DispositionDeferred
}

// MarkSettled relabels the payment as cleared debt. The method text is
// rewritten so listings show the settled label.
func (p *Payment) MarkSettled(note string) {
	p.Disposition = DispositionSettled
	p.Method = MethodSettled
	if note != "" {
		p.Note = note
	}
}
