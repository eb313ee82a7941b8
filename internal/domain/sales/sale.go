package sales

import (
	"fmt"
	"strings"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Sale is the aggregate root for a store sale. A sale is optionally owned
// by a customer; anonymous walk-in sales carry only a free-text name.
//
// Stock movements are not performed here: the aggregate decides what is
// allowed and the application service reserves or releases product stock
// for the resulting quantity deltas inside the same transaction.
type Sale struct {
	shared.BaseAggregateRoot
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	WalkInName string     `gorm:"type:varchar(120)"`
	Status     SaleStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	Items      []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments   []Payment  `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new open sale
func NewSale(customerID *uuid.UUID, walkInName string) (*Sale, error) {
	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		WalkInName:        strings.TrimSpace(walkInName),
		Status:            StatusOpen,
		Items:             make([]SaleItem, 0),
		Payments:          make([]Payment, 0),
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))
	return sale, nil
}

// Total returns the sum of all item subtotals
func (s *Sale) Total() valueobject.Money {
	total := valueobject.Zero()
	for i := range s.Items {
		total = total.Add(s.Items[i].Subtotal())
	}
	return total
}

// Paid returns the sum of all payment amounts
func (s *Sale) Paid() valueobject.Money {
	paid := valueobject.Zero()
	for i := range s.Payments {
		paid = paid.Add(s.Payments[i].Amount)
	}
	return paid
}

// Balance returns the outstanding amount. Negative means the sale was
// overpaid and carries a credit.
func (s *Sale) Balance() valueobject.Money {
	return s.Total().Sub(s.Paid())
}

// IsOpen reports whether the sale still accepts mutations
func (s *Sale) IsOpen() bool {
	return s.Status == StatusOpen
}

// FindItem returns the item with the given ID, or nil
func (s *Sale) FindItem(itemID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// FindItemByProduct returns the item for the given product, or nil.
// A sale holds at most one line per product.
func (s *Sale) FindItemByProduct(productID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// AddItem adds qty units of a product to the sale. If the product is
// already on the sale the existing line's quantity grows; the price
// snapshot taken on first add is kept. The caller must have reserved qty
// units of stock before calling.
func (s *Sale) AddItem(productID uuid.UUID, productName string, unitPrice valueobject.Money, qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if !s.IsOpen() {
		return shared.NewDomainError("SALE_NOT_OPEN", fmt.Sprintf("Cannot add items to a %s sale", s.Status))
	}

	if existing := s.FindItemByProduct(productID); existing != nil {
		existing.Quantity += qty
	} else {
		s.Items = append(s.Items, SaleItem{
			BaseEntity:  shared.NewBaseEntity(),
			SaleID:      s.ID,
			ProductID:   productID,
			ProductName: productName,
			UnitPrice:   unitPrice,
			Quantity:    qty,
		})
	}

	s.AddDomainEvent(NewSaleItemAddedEvent(s, productID, qty))
	return nil
}

// ChangeItemQuantity sets an item's quantity and returns the delta
// against the previous value. A positive delta means the caller must
// reserve that much additional stock; a negative delta means the caller
// must release it.
func (s *Sale) ChangeItemQuantity(itemID uuid.UUID, qty int) (int, error) {
	if qty <= 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if !s.IsOpen() {
		return 0, shared.NewDomainError("SALE_NOT_OPEN", fmt.Sprintf("Cannot change items on a %s sale", s.Status))
	}

	item := s.FindItem(itemID)
	if item == nil {
		return 0, shared.NewDomainError("ITEM_NOT_FOUND", "Sale item not found")
	}

	delta := qty - item.Quantity
	item.Quantity = qty
	return delta, nil
}

// RemoveItem deletes an item from the sale, returning the removed line so
// the caller can release its reserved stock
func (s *Sale) RemoveItem(itemID uuid.UUID) (SaleItem, error) {
	if !s.IsOpen() {
		return SaleItem{}, shared.NewDomainError("SALE_NOT_OPEN", fmt.Sprintf("Cannot remove items from a %s sale", s.Status))
	}

	for i := range s.Items {
		if s.Items[i].ID == itemID {
			removed := s.Items[i]
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.AddDomainEvent(NewSaleItemRemovedEvent(s, removed.ProductID, removed.Quantity))
			return removed, nil
		}
	}
	return SaleItem{}, shared.NewDomainError("ITEM_NOT_FOUND", "Sale item not found")
}

// ApplyPayment records a payment against the sale. The disposition is
// derived from the method text. When the payment brings the balance to
// zero or below, the sale finalizes; the returned flag reports that.
func (s *Sale) ApplyPayment(amount valueobject.Money, method, note string) (*Payment, bool, error) {
	if !amount.IsPositive() {
		return nil, false, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !s.IsOpen() {
		return nil, false, shared.NewDomainError("SALE_NOT_OPEN", fmt.Sprintf("Cannot pay a %s sale", s.Status))
	}

	balance := s.Balance()
	if balance.IsNegative() {
		return nil, false, shared.NewDomainError("ALREADY_SETTLED",
			fmt.Sprintf("Sale carries a credit of %s", balance.Abs()))
	}
	if balance.IsZero() {
		return nil, false, shared.NewDomainError("ALREADY_SETTLED", "Sale is already fully paid")
	}
	if amount.GreaterThan(balance) {
		return nil, false, shared.NewDomainError("OVER_PAYMENT",
			fmt.Sprintf("Payment of %s exceeds outstanding balance of %s", amount, balance))
	}

	payment := Payment{
		BaseEntity:  shared.NewBaseEntity(),
		SaleID:      s.ID,
		Amount:      amount,
		Method:      strings.TrimSpace(method),
		Disposition: DispositionFromMethod(method),
		Note:        strings.TrimSpace(note),
	}
	s.Payments = append(s.Payments, payment)
	s.AddDomainEvent(NewPaymentAppliedEvent(s, &payment))

	finalized := false
	if !s.Balance().IsPositive() {
		s.Status = StatusFinalized
		s.AddDomainEvent(NewSaleFinalizedEvent(s))
		finalized = true
	}

	return &s.Payments[len(s.Payments)-1], finalized, nil
}

// Cancel moves the sale to cancelled. Cancelling an already cancelled
// sale is a no-op; the returned flag reports whether anything changed so
// the caller knows whether to release stock.
func (s *Sale) Cancel() (bool, error) {
	if s.Status == StatusCancelled {
		return false, nil
	}

	s.Status = StatusCancelled
	s.AddDomainEvent(NewSaleCancelledEvent(s))
	return true, nil
}

// Reopen moves a finalized or cancelled sale back to open. A cancelled
// sale has returned its stock, so the caller must re-reserve stock for
// every item in the same transaction and abort on failure. A finalized
// sale still holds its stock and reopening it is a pure status change.
func (s *Sale) Reopen() error {
	if s.Status != StatusCancelled && s.Status != StatusFinalized {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only finalized or cancelled sales can be reopened, sale is %s", s.Status))
	}

	s.Status = StatusOpen
	s.AddDomainEvent(NewSaleReopenedEvent(s))
	return nil
}

// HoldsStock reports whether the sale currently holds stock reservations
// for its items. Cancelled sales have already returned their stock.
func (s *Sale) HoldsStock() bool {
	return s.Status == StatusOpen || s.Status == StatusFinalized
}
