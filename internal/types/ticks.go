package types

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Price is an exact price expressed in ticks (the instrument's minimum
// increment). All comparisons and arithmetic inside the engine operate on
// this integer form; decimals only exist at the API boundary.
type Price int64

// Quantity is an exact number of instrument units. It never goes negative:
// a resting order whose remaining quantity hits zero is removed from the book.
type Quantity int64

// PriceScale converts between human-readable decimal prices and tick counts.
// The number of decimal places is fixed per instrument (e.g. 2 decimals means
// one tick = 0.01).
type PriceScale struct {
	decimals int32
}

// NewPriceScale creates a scale with the given number of decimal places.
func NewPriceScale(decimals int32) PriceScale {
	return PriceScale{decimals: decimals}
}

// Decimals returns the configured number of decimal places.
func (s PriceScale) Decimals() int32 {
	return s.decimals
}

// PriceFromDecimal converts a decimal price into ticks. The price must be a
// whole multiple of one tick and must fit in the integer range.
func (s PriceScale) PriceFromDecimal(d decimal.Decimal) (Price, error) {
	shifted := d.Shift(s.decimals)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("price %s is not a multiple of the tick size: %w", d.String(), ErrInvalidIntent)
	}
	big := shifted.BigInt()
	if !big.IsInt64() {
		return 0, fmt.Errorf("price %s exceeds tick range: %w", d.String(), ErrOverflow)
	}
	return Price(big.Int64()), nil
}

// PriceFromString parses a decimal price string and converts it into ticks.
func (s PriceScale) PriceFromString(str string) (Price, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return 0, fmt.Errorf("malformed price %q: %w", str, ErrInvalidIntent)
	}
	return s.PriceFromDecimal(d)
}

// PriceToDecimal converts ticks back into a decimal price.
func (s PriceScale) PriceToDecimal(p Price) decimal.Decimal {
	return decimal.New(int64(p), -s.decimals)
}

// FormatPrice renders a tick price as a fixed-point decimal string.
func (s PriceScale) FormatPrice(p Price) string {
	return s.PriceToDecimal(p).StringFixed(s.decimals)
}

// Notional computes price * quantity in ticks, guarding against int64
// overflow. Overflow is a sizing fault surfaced to the caller, never a
// silently clamped value.
func Notional(p Price, q Quantity) (int64, error) {
	if p < 0 || q < 0 {
		return 0, fmt.Errorf("negative notional operand: %w", ErrInvalidIntent)
	}
	if p != 0 && int64(q) > math.MaxInt64/int64(p) {
		return 0, fmt.Errorf("notional %d x %d exceeds integer range: %w", p, q, ErrOverflow)
	}
	return int64(p) * int64(q), nil
}

// AddNotional accumulates a notional total with the same overflow guard.
func AddNotional(total, add int64) (int64, error) {
	if add > 0 && total > math.MaxInt64-add {
		return 0, fmt.Errorf("cumulative notional exceeds integer range: %w", ErrOverflow)
	}
	return total + add, nil
}
