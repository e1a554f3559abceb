// Package ordering places orders for configured product variations and
// captures their payment.
//
// An order moves from unpaid to paid exactly once. The transition is guarded
// by a charge claim on the order row so that concurrent payment attempts for
// the same order reach the gateway at most once. Each attempt is sent under an
// order scoped idempotency key, and a claim whose charge outcome is unknown is
// never released, so a later retry can only replay that same key.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trucksigns/truck-signs-api/app/payments"
	"github.com/trucksigns/truck-signs-api/app/pricing"
	"github.com/trucksigns/truck-signs-api/models"
)

// OrderStore persists orders and guards the unpaid to paid transition.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	UpdateBuyerDetails(ctx context.Context, id uint, details models.BuyerDetails) error
	ClaimCharge(ctx context.Context, id uint, token string, now, staleBefore time.Time) error
	ReleaseCharge(ctx context.Context, id uint, token string) error
	CompletePayment(ctx context.Context, id uint, token string, payment *models.Payment) error
}

type Config struct {
	Currency    string
	ColorPolicy ColorPolicy
	// ClaimTTL must exceed the gateway timeout.
	ClaimTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Currency:    "usd",
		ColorPolicy: PermissiveColor,
		ClaimTTL:    2 * time.Minute,
	}
}

type Service struct {
	builder *Builder
	orders  OrderStore
	gateway payments.Gateway
	cfg     Config
	logger  *slog.Logger

	now      func() time.Time
	newToken func() string
}

func NewService(catalog CatalogLookup, orders OrderStore, gateway payments.Gateway, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		builder:  NewBuilder(catalog, cfg.ColorPolicy),
		orders:   orders,
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: uuid.NewString,
	}
}

// PlaceOrderRequest is everything needed to create an unpaid order.
type PlaceOrderRequest struct {
	Buyer     BuyerInput
	Variation VariationRequest
}

// CreateOrder builds the variation and stores it together with a new unpaid
// order. Either all rows are written or none.
func (s *Service) CreateOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	buyer := req.Buyer.normalized()
	if err := validateBuyer(buyer); err != nil {
		return nil, err
	}

	variation, err := s.builder.Build(ctx, req.Variation)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		BuyerDetails: buyer.details(),
		Product:      *variation,
		OrderedDate:  s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"product_id", variation.ProductID,
		"product_variation_id", order.ProductID,
		"lettering_items", len(variation.LetteringItems),
	)
	return s.orders.GetByID(ctx, order.ID)
}

func (s *Service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateBuyerDetails changes the non-empty fields of patch on an unpaid order.
func (s *Service) UpdateBuyerDetails(ctx context.Context, id uint, patch BuyerInput) error {
	patch = patch.normalized()
	if len(patch.presentFields()) == 0 {
		return nil
	}
	if err := validateBuyerPatch(patch); err != nil {
		return err
	}
	return s.orders.UpdateBuyerDetails(ctx, id, patch.details())
}

// CapturePayment charges the order total to card and marks the order paid.
// A failed charge leaves the order unpaid and without a payment.
func (s *Service) CapturePayment(ctx context.Context, id uint, patch *BuyerInput, card payments.Card) (*models.Order, error) {
	if err := validateCard(card); err != nil {
		return nil, err
	}
	if patch != nil {
		if err := s.UpdateBuyerDetails(ctx, id, *patch); err != nil {
			return nil, err
		}
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Ordered {
		return nil, models.ErrOrderAlreadyPaid
	}

	total, err := pricing.OrderTotal(order)
	if err != nil {
		return nil, err
	}
	amount, err := pricing.MinorUnits(total)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: order %d totals %s", pricing.ErrIncompletePricing, id, total)
	}

	token := s.newToken()
	now := s.now()
	if err := s.orders.ClaimCharge(ctx, id, token, now, now.Add(-s.cfg.ClaimTTL)); err != nil {
		return nil, err
	}
	// Re-read under the claim so the attempt number cannot move underneath us.
	claimed, err := s.orders.GetByID(ctx, id)
	if err != nil {
		s.release(ctx, id, token)
		return nil, err
	}

	charge, err := s.gateway.Charge(ctx, claimed.ChargeKey(), card, amount, s.cfg.Currency)
	if err != nil {
		if errors.Is(err, payments.ErrChargeUnconfirmed) || ctx.Err() != nil {
			// The capture may have happened. Keep the claim so that only the
			// same idempotency key can be retried, once the claim goes stale.
			s.logger.ErrorContext(ctx, "charge outcome unknown",
				"order_id", id, "amount", amount, "charge_key", claimed.ChargeKey(), "error", err)
			return nil, err
		}
		s.release(ctx, id, token)
		s.logger.WarnContext(ctx, "payment failed", "order_id", id, "amount", amount, "card", card, "error", err)
		return nil, err
	}

	payment := &models.Payment{
		UserEmail:      order.UserEmail,
		StripeChargeID: charge.ID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		Timestamp:      now,
	}
	if err := s.orders.CompletePayment(context.WithoutCancel(ctx), id, token, payment); err != nil {
		// The card has been charged; this needs manual reconciliation.
		s.logger.ErrorContext(ctx, "charge captured but not recorded",
			"order_id", id, "charge_id", charge.ID, "amount", amount, "error", err)
		return nil, fmt.Errorf("record payment for order %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "payment captured", "order_id", id, "payment_id", payment.ID, "amount", amount)
	return s.orders.GetByID(ctx, id)
}

func (s *Service) release(ctx context.Context, id uint, token string) {
	if err := s.orders.ReleaseCharge(context.WithoutCancel(ctx), id, token); err != nil {
		s.logger.ErrorContext(ctx, "release charge claim", "order_id", id, "error", err)
	}
}
