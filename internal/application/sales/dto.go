package sales

import (
	"time"

	"github.com/germani/backend/internal/domain/sales"
	"github.com/google/uuid"
)

// CreateSaleRequest opens a new sale, optionally with initial items
type CreateSaleRequest struct {
	CustomerID *uuid.UUID        `json:"customer_id"`
	WalkInName string            `json:"walk_in_name"`
	Items      []SaleItemRequest `json:"items" binding:"omitempty,dive"`
}

// SaleItemRequest adds units of a product to a sale
type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// ChangeItemQuantityRequest sets a sale item's quantity
type ChangeItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ApplyPaymentRequest records a payment against a sale. Amount is a
// decimal string such as "45.90".
type ApplyPaymentRequest struct {
	Amount         string `json:"amount" binding:"required,money"`
	Method         string `json:"method" binding:"required"`
	Note           string `json:"note"`
	IdempotencyKey string `json:"-"`
}

// SaleItemResponse is one line of a sale
type SaleItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Subtotal    string    `json:"subtotal"`
}

// PaymentResponse is one payment of a sale
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	Amount      string    `json:"amount"`
	Method      string    `json:"method"`
	Disposition string    `json:"disposition"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaleResponse is the full representation of a sale
type SaleResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID *uuid.UUID         `json:"customer_id,omitempty"`
	WalkInName string             `json:"walk_in_name,omitempty"`
	Status     string             `json:"status"`
	Items      []SaleItemResponse `json:"items"`
	Payments   []PaymentResponse  `json:"payments"`
	Total      string             `json:"total"`
	Paid       string             `json:"paid"`
	Balance    string             `json:"balance"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewSaleResponse maps a sale aggregate to its response
func NewSaleResponse(sale *sales.Sale) *SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i := range sale.Items {
		item := &sale.Items[i]
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.String(),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal().String(),
		}
	}

	payments := make([]PaymentResponse, len(sale.Payments))
	for i := range sale.Payments {
		payment := &sale.Payments[i]
		payments[i] = PaymentResponse{
			ID:          payment.ID,
			Amount:      payment.Amount.String(),
			Method:      payment.Method,
			Disposition: string(payment.Disposition),
			Note:        payment.Note,
			CreatedAt:   payment.CreatedAt,
		}
	}

	return &SaleResponse{
		ID:         sale.ID,
		CustomerID: sale.CustomerID,
		WalkInName: sale.WalkInName,
		Status:     string(sale.Status),
		Items:      items,
		Payments:   payments,
		Total:      sale.Total().String(),
		Paid:       sale.Paid().String(),
		Balance:    sale.Balance().String(),
		CreatedAt:  sale.CreatedAt,
		UpdatedAt:  sale.UpdatedAt,
	}
}

// ApplyPaymentResponse reports a recorded payment and the sale's new state
type ApplyPaymentResponse struct {
	Sale      *SaleResponse `json:"sale"`
	PaymentID uuid.UUID     `json:"payment_id"`
	Finalized bool          `json:"finalized"`
}
