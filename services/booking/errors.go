package booking

import (
	"errors"
	"fmt"

	"github.com/Pushkar2103/parkezy-new/services/payment"
)

var (
	// ErrSlotUnavailable means the claim race was lost. Callers may offer another slot.
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrNotAuthorized   = errors.New("not authorized")
	// ErrInvalidState means the operation is not legal from the booking's current status.
	ErrInvalidState = errors.New("invalid booking state")
	// ErrNotPending is returned to the losing side of two concurrent owner responses.
	ErrNotPending = fmt.Errorf("%w: no pending request", ErrInvalidState)
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")

	ErrGatewayUnreachable = payment.ErrGatewayUnreachable
	ErrSignatureInvalid   = payment.ErrSignatureInvalid
	ErrPaymentRejected    = payment.ErrOrderRejected
)

// ValidationError describes a rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
