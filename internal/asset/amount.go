// Package asset provides an immutable ether amount value object. Raw values
// are always integer wei; decimals exist only at the presentation boundary.
package asset

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

// Common errors
var (
	ErrNilRaw         = errors.New("asset: nil raw value")
	ErrNegativeAmount = errors.New("asset: negative amount")
	ErrTooPrecise     = errors.New("asset: more than 18 decimal places")
)

// Amount is an immutable Value Object representing a quantity of ether.
// The raw value is always in wei.
type Amount struct {
	raw *big.Int
}

// NewAmount creates an Amount from a raw wei value.
func NewAmount(raw *big.Int) (Amount, error) {
	if raw == nil {
		return Amount{}, ErrNilRaw
	}
	if raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{raw: new(big.Int).Set(raw)}, nil
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{raw: new(big.Int)}
}

// ParseEther converts a decimal ether string ("0.9949") to an Amount.
// Fractions below one wei are rejected, not rounded: fee arithmetic must
// stay exact.
func ParseEther(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal ether quantity to an Amount.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	wei := d.Shift(etherDecimals)
	if !wei.IsInteger() {
		return Amount{}, ErrTooPrecise
	}

	return Amount{raw: wei.BigInt()}, nil
}

// Raw returns a copy of the wei value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// IsZero reports whether the amount is zero wei.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Decimal returns the amount as a decimal ether quantity.
func (a Amount) Decimal() decimal.Decimal {
	if a.raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, 0).Shift(-etherDecimals)
}

// EtherString renders the amount as a decimal ether string for display.
func (a Amount) EtherString() string {
	return a.Decimal().String()
}

// WeiString renders the raw wei value.
func (a Amount) WeiString() string {
	return a.Raw().String()
}

// FormatWei renders an arbitrary wei value as a decimal ether string.
// Convenience for display paths holding a bare *big.Int.
func FormatWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, 0).Shift(-etherDecimals).String()
}
