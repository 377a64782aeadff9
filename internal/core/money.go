// Package core holds the expense-record domain model shared by every other
// package: records, the category enumeration, calendar dates and money.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a non-negative amount in a single fixed currency, stored as cents.
type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Zero is allowed; signs are not.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseMoney is ParseDecimalToCents returning a Money value.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Decimal renders the amount as a plain decimal string with two places
// (e.g. "12.34"), the form used in CSV rows and model prompts.
func (m Money) Decimal() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// Currency renders the amount with the currency symbol for display.
func (m Money) Currency() string {
	return "€" + m.Decimal()
}

// MarshalJSON encodes the amount as an integer number of cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

// UnmarshalJSON accepts an integer number of cents.
func (m *Money) UnmarshalJSON(b []byte) error {
	var cents int64
	if err := json.Unmarshal(b, &cents); err != nil {
		return err
	}
	m.Cents = cents
	return nil
}
