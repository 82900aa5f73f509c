package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in the minor unit. All pricing arithmetic runs
// on this type; decimals only appear at the API boundary.
type Cents int64

// CentsFromDecimal converts a major-unit decimal amount ("5.90") into cents,
// rejecting values with more than two fractional digits.
func CentsFromDecimal(value decimal.Decimal) (Cents, error) {
	scaled := value.Mul(decimal.NewFromInt(100))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", value)
	}
	return Cents(scaled.IntPart()), nil
}

// CentsFromString parses a decimal string into cents.
func CentsFromString(value string) (Cents, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return CentsFromDecimal(dec)
}

// Decimal renders the amount as a major-unit decimal with two places.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(decimal.NewFromInt(100))
}

// String renders the amount with exactly two fractional digits.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// PercentOf returns value × bps / 10000 rounded half-up to the nearest cent.
// Used for percentage coupons, where bps is the discount in basis points.
func PercentOf(value Cents, bps int64) Cents {
	product := decimal.NewFromInt(int64(value)).Mul(decimal.NewFromInt(bps))
	return Cents(product.Div(decimal.NewFromInt(10000)).Round(0).IntPart())
}
