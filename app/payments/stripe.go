package payments

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const DefaultTimeout = 15 * time.Second

type StripeConfig struct {
	SecretKey string
	// BaseURL overrides the Stripe API host, e.g. for stripe-mock.
	BaseURL string
	Timeout time.Duration
}

// StripeGateway charges cards with the Stripe token and charge APIs.
type StripeGateway struct {
	api     *client.API
	timeout time.Duration
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendConfig.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig)

	return &StripeGateway{
		api: client.New(cfg.SecretKey, &stripe.Backends{
			API:     backend,
			Connect: backend,
			Uploads: backend,
		}),
		timeout: timeout,
	}
}

func (g *StripeGateway) Charge(ctx context.Context, idempotencyKey string, card Card, amount int64, currency string) (*Charge, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidPaymentRequest, amount)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tokenParams := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(card.ExpMonth),
			ExpYear:  stripe.String(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
	}
	tokenParams.Context = ctx
	if idempotencyKey != "" {
		tokenParams.SetIdempotencyKey(idempotencyKey + "-token")
	}

	token, err := g.api.Tokens.New(tokenParams)
	if err != nil {
		if isIdempotencyConflict(err) {
			// An earlier attempt under this key used different card details.
			return nil, unconfirmed(classify(ctx, err))
		}
		return nil, classify(ctx, err)
	}

	chargeParams := &stripe.ChargeParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	chargeParams.Context = ctx
	if idempotencyKey != "" {
		chargeParams.SetIdempotencyKey(idempotencyKey + "-charge")
	}
	if err := chargeParams.SetSource(token.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPaymentRequest, err)
	}

	ch, err := g.api.Charges.New(chargeParams)
	if err != nil {
		if chargeMayHaveSucceeded(err) {
			return nil, unconfirmed(classify(ctx, err))
		}
		return nil, classify(ctx, err)
	}

	return &Charge{
		ID:       ch.ID,
		Amount:   ch.Amount,
		Currency: string(ch.Currency),
	}, nil
}

// chargeMayHaveSucceeded reports whether a failed charge request leaves the
// capture in doubt. Only an explicit refusal from the processor rules it out.
func chargeMayHaveSucceeded(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return true
	}
	switch stripeErr.Type {
	case stripe.ErrorTypeAPI, stripe.ErrorTypeIdempotency:
		return true
	}
	return stripeErr.HTTPStatusCode >= http.StatusInternalServerError
}

func isIdempotencyConflict(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeIdempotency
}

// classify maps a Stripe client error onto the package error kinds.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return &DeclinedError{
			Reason:  declineReason(string(stripeErr.Code)),
			Message: stripeErr.Msg,
		}
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited", ErrGatewayUnavailable)
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized, stripeErr.HTTPStatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: authentication with processor failed", ErrGatewayUnavailable)
	case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
		return fmt.Errorf("%w: %s", ErrInvalidPaymentRequest, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %s", ErrGatewayUnavailable, stripeErr.Msg)
}
