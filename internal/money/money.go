// Package money holds the fixed-point amount type used across racha.
//
// Amounts are integer minor units (cents). Conversion to and from decimal
// strings happens only at the API boundary.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units.
type Cents int64

// MaxAmount is the largest amount a single expense or share may carry. It
// leaves room for summing many expenses of one event in an int64.
const MaxAmount Cents = 100_000_000_000_00

// ErrOutOfRange is wrapped by Parse for values that do not fit in Cents.
var ErrOutOfRange = errors.New("amount out of range")

// Abs returns the absolute value of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Decimal returns c as a decimal number of major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Shift(-2)
}

// String formats c with exactly two fractional digits, e.g. "30.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Parse converts a decimal string such as "12.5" into Cents.
// Values with more than two fractional digits are rejected rather than rounded.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("invalid amount %q: %w", s, ErrOutOfRange)
	}
	return Cents(shifted.IntPart()), nil
}

// Sum adds up amounts.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
