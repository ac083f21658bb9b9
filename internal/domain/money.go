package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Fixed numeric policy for the whole engine: monetary values carry two
// fractional digits (cents), quantities carry eight. Rounding is half-up
// (ties away from zero) at every construction and mutation point, not just
// at input boundaries.
const (
	MoneyScale    = 2
	QuantityScale = 8
)

// RoundMoney quantizes d to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RoundQuantity quantizes d to the quantity scale.
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// ParseMoney converts a numeric string to a quantized monetary value.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return RoundMoney(d), nil
}

// ParseQuantity converts a numeric string to a quantized quantity.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}

	return RoundQuantity(d), nil
}
