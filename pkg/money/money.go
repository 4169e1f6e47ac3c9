// Package money converts integer paise amounts to display values.
// All arithmetic elsewhere stays in int64 paise; decimals exist only
// at the serialization edge.
package money

import "github.com/shopspring/decimal"

// Rupees converts a paise amount to a two-place decimal rupee value.
func Rupees(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

// DisplayString renders a paise amount as a rupee string, e.g. 149900 -> "1499.00".
func DisplayString(paise int64) string {
	return Rupees(paise).StringFixed(2)
}

// FromRupees converts a decimal rupee value to paise, truncating
// anything below one paisa.
func FromRupees(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}
