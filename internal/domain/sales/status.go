package sales

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	StatusOpen      SaleStatus = "open"
	StatusFinalized SaleStatus = "finalized"
	StatusCancelled SaleStatus = "cancelled"
)

// IsValid checks if the status is a valid sale status
func (s SaleStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusFinalized, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if a transition to the target status is allowed.
// Open sales may finalize or cancel; finalized and cancelled sales may
// be reopened; finalized sales may also cancel.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case StatusOpen:
		return target == StatusFinalized || target == StatusCancelled
	case StatusFinalized:
		return target == StatusCancelled || target == StatusOpen
	case StatusCancelled:
		return target == StatusOpen
	}
	return false
}
