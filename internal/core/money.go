// Package core provides the domain types of the expense ledger.
//
// Monetary values are kept as integer cents and converted to
// shopspring decimals for parsing and arithmetic, so that sums stay exact
// and derived figures (averages, percentages) round predictably.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// MinAmount is the smallest accepted expense amount.
	MinAmount = decimal.New(1, -2)
	// MaxAmount is the largest accepted expense amount.
	MaxAmount = decimal.RequireFromString("99999999.99")

	ErrInvalidAmount = errors.New("invalid amount")
)

// Money is an amount with two-digit fractional precision, stored as cents.
type Money struct {
	Cents int64
}

// MoneyFromDecimal rounds d half-up to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseAmount parses a plain decimal string ("12.5", "0.01", "1e2").
// It does not round; callers range-check the exact value first.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// MarshalJSON renders the amount as a bare JSON number, e.g. 12.50.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = MoneyFromDecimal(d)
	return nil
}


