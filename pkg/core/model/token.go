// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Token is a fungible escrow token which pays for a transition.
// Tokens are consumed and produced along with documents atomically.
type Token struct {
	Holder Party  `json:"holder"`
	Amount Amount `json:"amount"`
}

// Participants returns the holder alone.
func (t Token) Participants() []Party {
	return []Party{t.Holder}
}

// SumTokens sums amounts of the given tokens. All tokens must have the
// same currency, otherwise, ErrCurrencyMismatch will be returned.
func SumTokens(tokens []Token) (Amount, error) {
	var sum Amount
	for _, t := range tokens {
		var err error
		if sum, err = sum.Plus(t.Amount); err != nil {
			return Amount{}, err
		}
	}
	return sum, nil
}
