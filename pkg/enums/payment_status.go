package enums

import "fmt"

// PaymentStatus tracks the lifecycle of a gateway payment.
type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "created"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusCreated,
	PaymentStatusSuccess,
	PaymentStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanTransitionTo enforces forward-only status movement: a payment leaves
// created exactly once and terminal states never change.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if !next.IsValid() {
		return false
	}
	switch p {
	case PaymentStatusCreated:
		return next == PaymentStatusSuccess || next == PaymentStatusFailed
	default:
		return false
	}
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
