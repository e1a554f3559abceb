// Package pricing computes what an order costs.
//
// A variation costs its category's base price plus the price of every
// lettering line attached to it. Colors carry no surcharge. There is no tax,
// discount or shipping component.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trucksigns/truck-signs-api/models"
)

// ErrIncompletePricing means some price input was not loaded or is invalid.
// Pricing fails closed: nothing is charged for an order that cannot be priced.
var ErrIncompletePricing = errors.New("order cannot be priced")

var hundred = decimal.NewFromInt(100)

// VariationTotal returns base price plus lettering prices for v.
// v must have Product.Category and every LetteringItems[i].LetteringItemCategory loaded.
func VariationTotal(v *models.ProductVariation) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, fmt.Errorf("%w: no product variation", ErrIncompletePricing)
	}

	category := v.Product.Category
	if category.ID == 0 {
		return decimal.Zero, fmt.Errorf("%w: product %d has no category loaded", ErrIncompletePricing, v.Product.ID)
	}
	if category.BasePrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative base price on category %d", ErrIncompletePricing, category.ID)
	}

	total := category.BasePrice
	for _, item := range v.LetteringItems {
		lic := item.LetteringItemCategory
		if lic.ID == 0 {
			return decimal.Zero, fmt.Errorf("%w: lettering item %d has no category loaded", ErrIncompletePricing, item.ID)
		}
		if lic.Price.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative price on lettering item category %d", ErrIncompletePricing, lic.ID)
		}
		total = total.Add(lic.Price)
	}
	return total, nil
}

// OrderTotal prices the variation the order was placed for.
func OrderTotal(o *models.Order) (decimal.Decimal, error) {
	if o == nil {
		return decimal.Zero, fmt.Errorf("%w: no order", ErrIncompletePricing)
	}
	return VariationTotal(&o.Product)
}

// MinorUnits converts a currency amount to integer cents, rounding half up
// to two decimal places first.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrIncompletePricing, amount)
	}
	cents := amount.Round(2).Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %s is not representable in minor units", ErrIncompletePricing, amount)
	}
	return cents.IntPart(), nil
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
