// Package payments charges cards through a remote payment processor.
//
// A charge is a single synchronous attempt: the card is tokenized, then the
// token is charged. Nothing is retried here; the caller decides whether to
// surface the error to the buyer. Requests sent under the same idempotency
// key are collapsed by the processor into one charge.
package payments

import (
	"context"
	"log/slog"
)

// Card holds raw card fields for the duration of one request. It must never
// be persisted or logged; String and LogValue redact it.
type Card struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

func (c Card) last4() string {
	if len(c.Number) < 4 {
		return "****"
	}
	return c.Number[len(c.Number)-4:]
}

func (c Card) String() string {
	return "card ending " + c.last4()
}

func (c Card) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Charge is the processor's receipt for a captured amount.
type Charge struct {
	ID       string
	Amount   int64
	Currency string
}

// Gateway captures amount (in minor units of currency) from card.
//
// idempotencyKey identifies the charge attempt. Repeating a call with the same
// key and card never captures more than once. An empty key disables this.
type Gateway interface {
	Charge(ctx context.Context, idempotencyKey string, card Card, amount int64, currency string) (*Charge, error)
}
