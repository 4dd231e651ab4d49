package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The core carries every amount as integer minor units so the zero-sum
// invariant survives arithmetic exactly. Decimal conversion happens only
// here, at the API boundary.

// minorUnitDigits maps ISO currency codes to their minor-unit exponent.
// Anything not listed uses two digits.
var minorUnitDigits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currencyCode string) int32 {
	if d, ok := minorUnitDigits[currencyCode]; ok {
		return d
	}
	return 2
}

// ToMinorUnits converts a major-unit decimal amount (e.g. "12.34") into
// integer minor units for the given currency. Amounts with more
// precision than the currency carries are rejected, not rounded.
func ToMinorUnits(amount decimal.Decimal, currencyCode string) (int64, error) {
	exp := Exponent(currencyCode)
	shifted := amount.Shift(exp)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more precision than %s allows", amount.String(), currencyCode)
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits converts integer minor units back into a major-unit
// decimal for the given currency.
func FromMinorUnits(minor int64, currencyCode string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-Exponent(currencyCode))
}
