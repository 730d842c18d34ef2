// Package money holds the fixed-point rules shared by every monetary field.
// Amounts are shopspring decimals end to end; nothing here converts to float64.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
)

const (
	// FiatScale is the number of fractional digits kept for fiat ledger amounts.
	FiatScale int32 = 4
	// CryptoScale is the number of fractional digits kept for digital-asset amounts.
	CryptoScale int32 = 8
	// RateScale is the number of fractional digits kept for exchange rates.
	RateScale int32 = 8
)

var (
	// MaxFiat is the largest magnitude a NUMERIC(19,4) column holds.
	MaxFiat = decimal.RequireFromString("999999999999999.9999")
	// MinFiat is the most negative fiat value.
	MinFiat = MaxFiat.Neg()
	// MaxCrypto bounds NUMERIC(28,8) columns.
	MaxCrypto = decimal.RequireFromString("99999999999999999999.99999999")
)

// FitsScale reports whether d has no more than scale fractional digits.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// InFiatRange reports whether d fits the fiat column range.
func InFiatRange(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(MinFiat) && d.LessThanOrEqual(MaxFiat)
}

// Positive validates a strictly positive amount with at most scale digits.
func Positive(field string, d decimal.Decimal, scale int32) error {
	if !d.IsPositive() {
		return apperror.Validation(field, "must be greater than zero")
	}
	return precision(field, d, scale)
}

// NonNegative validates an amount that may be zero.
func NonNegative(field string, d decimal.Decimal, scale int32) error {
	if d.IsNegative() {
		return apperror.Validation(field, "must not be negative")
	}
	return precision(field, d, scale)
}

// FiatRange validates that d stays inside ±MaxFiat.
func FiatRange(field string, d decimal.Decimal) error {
	if !InFiatRange(d) {
		return apperror.Validation(field, "%s is outside the range ±%s", d.StringFixed(FiatScale), MaxFiat.String())
	}
	return nil
}

// CryptoRange validates that d fits a crypto balance column.
func CryptoRange(field string, d decimal.Decimal) error {
	if d.Abs().GreaterThan(MaxCrypto) {
		return apperror.Validation(field, "%s exceeds %s", d.String(), MaxCrypto.String())
	}
	return nil
}

func precision(field string, d decimal.Decimal, scale int32) error {
	if !FitsScale(d, scale) {
		return apperror.Validation(field, "at most %d decimal places allowed", scale)
	}
	return nil
}

// Parse reads a decimal from user input, reporting failures against field.
func Parse(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperror.Validation(field, "is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validation(field, "%q is not a decimal number", raw)
	}
	return d, nil
}

// Currency validates a three letter upper-case ISO-4217 code.
func Currency(field, code string) error {
	if len(code) != 3 {
		return apperror.Validation(field, "must be a 3 letter currency code")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return apperror.Validation(field, "must be a 3 letter currency code")
		}
	}
	return nil
}
