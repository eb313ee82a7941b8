package partner

import (
	"time"

	"github.com/germani/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateCustomerRequest registers a new customer. OpeningBalance is a
// decimal string and defaults to zero when empty.
type CreateCustomerRequest struct {
	Name           string `json:"name" binding:"required"`
	Nickname       string `json:"nickname"`
	Phone          string `json:"phone"`
	OpeningBalance string `json:"opening_balance" binding:"omitempty,money"`
}

// UpdateCustomerRequest changes descriptive fields
type UpdateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
}

// SetOpeningBalanceRequest replaces the opening balance
type SetOpeningBalanceRequest struct {
	OpeningBalance string `json:"opening_balance" binding:"required,money"`
}

// CustomerResponse is the full representation of a customer
type CustomerResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Nickname       string    `json:"nickname,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	OpeningBalance string    `json:"opening_balance"`
	Debt           string    `json:"debt"`
	HasDebt        bool      `json:"has_debt"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCustomerResponse maps a customer aggregate to its response
func NewCustomerResponse(customer *partner.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:             customer.ID,
		Name:           customer.Name,
		Nickname:       customer.Nickname,
		Phone:          customer.Phone,
		OpeningBalance: customer.OpeningBalance.String(),
		Debt:           customer.Debt.String(),
		HasDebt:        customer.HasDebt(),
		CreatedAt:      customer.CreatedAt,
		UpdatedAt:      customer.UpdatedAt,
	}
}
