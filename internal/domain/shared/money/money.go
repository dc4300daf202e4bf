package money

import (
	"github.com/shopspring/decimal"
)

// Money keeps amounts as exact decimals so percentage chains accumulate no
// drift; rounding to 2 decimal places happens only when a value is rendered.
type Money struct {
	amount decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// FromFloat constructs Money from a float literal (fixtures, request bodies).
func FromFloat(v float64) Money {
	return Money{amount: decimal.NewFromFloat(v)}
}

// FromDecimal wraps an exact decimal amount.
func FromDecimal(d decimal.Decimal) Money {
	return Money{amount: d}
}

// FromString parses a decimal amount, e.g. "105.60".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d}, nil
}

// Must parses an amount and panics on failure; useful in tests and fixtures.
func Must(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// MulInt multiplies by an integer factor (nights, guests, quantity).
func (m Money) MulInt(times int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(times))}
}

// Percent returns points/100 of the amount, exactly.
func (m Money) Percent(points decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(points).Div(decimal.NewFromInt(100))}
}

// ClampZero floors the amount at zero.
func (m Money) ClampZero() Money {
	if m.amount.IsNegative() {
		return Money{}
	}
	return m
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Cmp compares amounts: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal exposes the exact amount for persistence.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Rounded renders the presentation value with 2 decimal places.
func (m Money) Rounded() decimal.Decimal {
	return m.amount.Round(2)
}

// String renders the rounded presentation value.
func (m Money) String() string {
	return m.Rounded().StringFixed(2)
}

// MarshalJSON emits the rounded amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Rounded().String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.amount = d
	return nil
}
