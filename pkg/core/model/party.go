// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Party identifies a legal entity which may participate in documents,
// sign transitions, or hold escrow tokens. Its textual form follows
// the X.500 distinguished name convention, e.g., O=LTA,L=London,C=GB.
// Party values are comparable, so they may be used as map keys.
type Party struct {
	Organisation string
	Locality     string
	Country      string
}

// ErrMalformedParty indicates that a string could not be parsed as a
// Party because one of the O, L, or C attributes was missing, repeated,
// or unknown.
var ErrMalformedParty = errors.New("malformed party name")

// String returns the distinguished name of p.
func (p Party) String() string {
	return fmt.Sprintf("O=%s,L=%s,C=%s", p.Organisation, p.Locality, p.Country)
}

// IsZero reports whether p is the zero Party, i.e., no party at all.
func (p Party) IsZero() bool {
	return p == Party{}
}

// LogValue implements slog.LogValuer.
func (p Party) LogValue() slog.Value {
	return slog.StringValue(p.String())
}

// MarshalText implements encoding.TextMarshaler, so a Party is
// serialized as its distinguished name.
func (p Party) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("marshaling zero party: %w", ErrMalformedParty)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Party) UnmarshalText(text []byte) error {
	pp, err := ParseParty(string(text))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

// ParseParty parses a distinguished name like O=Garage,L=Leeds,C=GB.
// Attributes may come in any order and surrounding spaces are ignored,
// but each one of O, L, and C must be present exactly once.
func ParseParty(s string) (Party, error) {
	var p Party
	var seen [3]bool
	for _, attr := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(attr, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || v == "" {
			return Party{}, ErrMalformedParty
		}
		var i int
		switch k {
		case "O":
			i, p.Organisation = 0, v
		case "L":
			i, p.Locality = 1, v
		case "C":
			i, p.Country = 2, v
		default:
			return Party{}, ErrMalformedParty
		}
		if seen[i] {
			return Party{}, ErrMalformedParty
		}
		seen[i] = true
	}
	if !seen[0] || !seen[1] || !seen[2] {
		return Party{}, ErrMalformedParty
	}
	return p, nil
}

// ContainsParty reports whether p is among the given parties.
func ContainsParty(parties []Party, p Party) bool {
	for _, q := range parties {
		if q == p {
			return true
		}
	}
	return false
}
