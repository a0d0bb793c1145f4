package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Stellar amounts are fixed-point strings with at most seven fractional
// digits.
const MaxDecimals = 7

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNotPositive     = errors.New("amount must be positive")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseAmount validates input as a strictly positive decimal with at most
// seven fractional digits and returns its canonical 7-decimal form.
func ParseAmount(input string) (string, error) {
	d, err := decimal.NewFromString(input)
	if err != nil {
		return "", ErrInvalidAmount
	}
	if d.Exponent() < -MaxDecimals {
		return "", ErrTooManyDecimals
	}
	if !d.IsPositive() {
		return "", ErrNotPositive
	}
	return Format(d), nil
}

// ParsePrice validates input as a strictly positive decimal. Offer prices
// are forwarded to the network as rationals and keep the caller's
// precision.
func ParsePrice(input string) (string, error) {
	d, err := decimal.NewFromString(input)
	if err != nil {
		return "", ErrInvalidAmount
	}
	if !d.IsPositive() {
		return "", ErrNotPositive
	}
	return d.String(), nil
}

// Total multiplies a unit price by a quantity using exact decimal
// arithmetic and returns the 7-decimal amount string.
func Total(unitPrice string, quantity int) (string, error) {
	if quantity <= 0 {
		return "", ErrNotPositive
	}
	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return "", ErrInvalidAmount
	}
	if !price.IsPositive() {
		return "", ErrNotPositive
	}
	return Format(price.Mul(decimal.NewFromInt(int64(quantity)))), nil
}

// Format renders a decimal with exactly seven fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(MaxDecimals)
}
