package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrDeclined is the root of every card-level failure.
	ErrDeclined = errors.New("payment declined")
	// ErrInvalidPaymentRequest means the processor rejected the request itself.
	ErrInvalidPaymentRequest = errors.New("invalid payment request")
	// ErrGatewayUnavailable covers network, rate limit, authentication and
	// processor-side failures. The buyer may retry.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayTimeout is the timeout flavor of ErrGatewayUnavailable.
	ErrGatewayTimeout = fmt.Errorf("%w: timed out", ErrGatewayUnavailable)
	// ErrChargeUnconfirmed marks a failure after the charge request was sent.
	// The processor may have captured the amount, so the attempt must not be
	// replaced by a new one under a different idempotency key.
	ErrChargeUnconfirmed = errors.New("charge outcome unknown")
)

func unconfirmed(err error) error {
	return fmt.Errorf("%w: %w", ErrChargeUnconfirmed, err)
}

type DeclineReason string

const (
	ReasonCardDeclined    DeclineReason = "card_declined"
	ReasonExpiredCard     DeclineReason = "expired_card"
	ReasonIncorrectCVC    DeclineReason = "incorrect_cvc"
	ReasonIncorrectNumber DeclineReason = "incorrect_number"
	ReasonProcessingError DeclineReason = "processing_error"
	ReasonOther           DeclineReason = "card_error"
)

// DeclinedError is returned when the processor refuses the card.
type DeclinedError struct {
	Reason  DeclineReason
	Message string
}

func (e *DeclinedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment declined: %s", e.Reason)
	}
	return fmt.Sprintf("payment declined: %s: %s", e.Reason, e.Message)
}

func (e *DeclinedError) Unwrap() error {
	return ErrDeclined
}

func declineReason(code string) DeclineReason {
	switch code {
	case "card_declined":
		return ReasonCardDeclined
	case "expired_card", "invalid_expiry_month", "invalid_expiry_year":
		return ReasonExpiredCard
	case "incorrect_cvc", "invalid_cvc":
		return ReasonIncorrectCVC
	case "incorrect_number", "invalid_number":
		return ReasonIncorrectNumber
	case "processing_error":
		return ReasonProcessingError
	}
	return ReasonOther
}
