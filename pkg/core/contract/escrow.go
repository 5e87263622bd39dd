// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract

import (
	"math"

	"github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// CheckEscrow verifies that the payer pays exactly price to the payee
// by consuming the inputs tokens and creating the outputs tokens.
// The checks are performed in order and the first violation is
// returned. At least one input token must exist and every token must
// have a positive quantity. All inputs must be held by payer and all
// tokens must have the price currency. The outputs which are held by
// payee must sum to price exactly and the total value of inputs and
// outputs must be equal, so no value may be created or destroyed.
func CheckEscrow(
	inputs, outputs []model.Token, payer, payee model.Party,
	price model.Amount,
) error {
	if len(inputs) == 0 {
		return errors.Wrap(ruleerrors.ErrNoFunds, "no input tokens")
	}
	for _, ts := range [][]model.Token{inputs, outputs} {
		for _, t := range ts {
			if !t.Amount.IsPositive() {
				return errors.Wrapf(
					ruleerrors.ErrNonPositiveToken,
					"token of %s holds %v", t.Holder, t.Amount,
				)
			}
		}
	}
	for _, t := range inputs {
		if t.Holder != payer {
			return errors.Wrapf(
				ruleerrors.ErrForeignFunds,
				"input token held by %s instead of %s", t.Holder, payer,
			)
		}
	}
	for _, ts := range [][]model.Token{inputs, outputs} {
		for _, t := range ts {
			if t.Amount.Currency != price.Currency {
				return errors.Wrapf(
					ruleerrors.ErrCurrencyMismatch,
					"token %v while price is %v", t.Amount, price,
				)
			}
		}
	}
	var received []model.Token
	for _, t := range outputs {
		if t.Holder == payee {
			received = append(received, t)
		}
	}
	paid, err := sumQuantity(received)
	if err != nil {
		return err
	}
	if paid != price.Quantity {
		return errors.Wrapf(
			ruleerrors.ErrWrongPayeeAmount, "%s receives %v instead of %v",
			payee, model.Amount{Quantity: paid, Currency: price.Currency},
			price,
		)
	}
	in, err := sumQuantity(inputs)
	if err != nil {
		return err
	}
	out, err := sumQuantity(outputs)
	if err != nil {
		return err
	}
	if in != out {
		return errors.Wrapf(
			ruleerrors.ErrValueLeak,
			"inputs sum to %d and outputs sum to %d", in, out,
		)
	}
	return nil
}

// sumQuantity adds the positive quantities of tokens.
func sumQuantity(tokens []model.Token) (int64, error) {
	var q int64
	for _, t := range tokens {
		if t.Amount.Quantity > math.MaxInt64-q {
			return 0, errors.Wrapf(
				ruleerrors.ErrTokenOverflow,
				"sum of %d tokens exceeds the int64 range", len(tokens),
			)
		}
		q += t.Amount.Quantity
	}
	return q, nil
}

// checkTransitionEscrow runs CheckEscrow on the tokens of tx.
func checkTransitionEscrow(
	tx Transition, payer, payee model.Party, price model.Amount,
) error {
	return CheckEscrow(
		statesOf[model.Token](tx.Inputs),
		statesOf[model.Token](tx.Outputs),
		payer, payee, price,
	)
}
