package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Inputs outside these bounds are rejected before any arithmetic, since
// rescaling a decimal costs time and memory linear in its exponent.
const (
	minDecimalExponent = -8
	maxDecimalExponent = 15
	maxDecimalDigits   = 30
)

// ValidateDecimal bounds the scale and precision of a money or percentage
// input named field.
func ValidateDecimal(field string, v decimal.Decimal) error {
	if e := v.Exponent(); e < minDecimalExponent || e > maxDecimalExponent || v.NumDigits() > maxDecimalDigits {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidInput, field)
	}
	return nil
}

// ValidateAmount requires a positive, bounded offer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if err := ValidateDecimal("amount", amount); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return nil
}

// Valuation computes (amount / equity) * 100. ok is false when either term
// is not positive or out of range, in which case no valuation exists.
func Valuation(amount, equity decimal.Decimal) (decimal.Decimal, bool) {
	if ValidateDecimal("amount", amount) != nil || ValidateDecimal("equity", equity) != nil {
		return decimal.Zero, false
	}
	if !amount.IsPositive() || !equity.IsPositive() {
		return decimal.Zero, false
	}
	return amount.Mul(hundred).Div(equity), true
}
