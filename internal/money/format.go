// Package money renders amounts for display in the caller's locale.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NoValuation is shown when an offer implies no valuation.
const NoValuation = "0"

// Format renders amount with locale grouping and at most two decimals.
func Format(locale string, amount decimal.Decimal) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// FormatValuation renders a valuation, or NoValuation when ok is false.
func FormatValuation(locale string, v decimal.Decimal, ok bool) string {
	if !ok {
		return NoValuation
	}
	return Format(locale, v)
}
