// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitDigits is the number of fractional digits of all supported
// fiat currencies, e.g., 100 pence make one GBP.
const MinorUnitDigits = 2

// Amount is a quantity of some fiat currency, kept as an integer number
// of minor units in order to avoid rounding errors. Its textual form
// uses major units, such as "100.00 GBP".
type Amount struct {
	Quantity int64  // number of minor units, e.g., pence
	Currency string // ISO 4217 code, e.g., GBP
}

// Errors which may be returned by ParseAmount and Plus.
var (
	ErrMalformedAmount  = errors.New("malformed amount")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// GBP returns an Amount of the given major units of British pounds.
func GBP(pounds int64) Amount {
	return Amount{Quantity: pounds * 100, Currency: "GBP"}
}

// IsPositive reports whether a has a strictly positive quantity.
func (a Amount) IsPositive() bool {
	return a.Quantity > 0
}

// IsNegative reports whether a has a negative quantity.
func (a Amount) IsNegative() bool {
	return a.Quantity < 0
}

// Plus returns the sum of a and b. The zero Amount is accepted as an
// identity element regardless of the currency of the other operand.
func (a Amount) Plus(b Amount) (Amount, error) {
	switch {
	case a == Amount{}:
		return b, nil
	case b == Amount{}:
		return a, nil
	case a.Currency != b.Currency:
		return Amount{}, fmt.Errorf(
			"%s + %s: %w", a.Currency, b.Currency, ErrCurrencyMismatch,
		)
	}
	return Amount{Quantity: a.Quantity + b.Quantity, Currency: a.Currency}, nil
}

// Minus returns a minus b, both having the same currency.
func (a Amount) Minus(b Amount) (Amount, error) {
	b.Quantity = -b.Quantity
	return a.Plus(b)
}

// Decimal returns the quantity of a in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Quantity, -MinorUnitDigits)
}

// String formats a like "100.00 GBP".
func (a Amount) String() string {
	return a.Decimal().StringFixed(MinorUnitDigits) + " " + a.Currency
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	aa, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = aa
	return nil
}

// ParseAmount parses strings like "100 GBP" or "99.5 GBP". The quantity
// may not have more than MinorUnitDigits fractional digits and the
// currency must be a three letters upper case code.
func ParseAmount(s string) (Amount, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Amount{}, fmt.Errorf("%q: %w", s, ErrMalformedAmount)
	}
	d, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Amount{}, fmt.Errorf("%q: %w", s, ErrMalformedAmount)
	}
	minor := d.Shift(MinorUnitDigits)
	if !minor.IsInteger() {
		return Amount{}, fmt.Errorf(
			"%q has too many fractional digits: %w", s, ErrMalformedAmount,
		)
	}
	cur := fields[1]
	if len(cur) != 3 || strings.ToUpper(cur) != cur {
		return Amount{}, fmt.Errorf("%q: %w", s, ErrMalformedAmount)
	}
	return Amount{Quantity: minor.IntPart(), Currency: cur}, nil
}
