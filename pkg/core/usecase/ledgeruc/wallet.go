// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"context"
	"fmt"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// Deposit issues a new escrow token with the given amount for holder.
// Deposits are not transitions of any contract and so they are not
// verified, but amount must be positive.
func (uc *UseCase) Deposit(
	ctx context.Context, holder model.Party, amount model.Amount,
) (model.Token, error) {
	if !amount.IsPositive() {
		return model.Token{}, cerr.BadRequest(fmt.Errorf(
			"deposit amount (%v) is not positive", amount,
		))
	}
	t := model.Token{Holder: holder, Amount: amount}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			_, err := uc.vault.Tx(tx).Insert(ctx, t)
			return err
		})
	})
	if err != nil {
		return model.Token{}, err
	}
	log.Info(ctx, "tokens are deposited", log.Party("holder", holder))
	return t, nil
}

// Balance sums the unconsumed tokens of holder.
func (uc *UseCase) Balance(
	ctx context.Context, holder model.Party,
) (sum model.Amount, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		stored, err := uc.vault.Conn(c).Tokens(ctx, holder)
		if err != nil {
			return err
		}
		tokens := make([]model.Token, 0, len(stored))
		for _, st := range stored {
			tokens = append(tokens, st.State)
		}
		sum, err = model.SumTokens(tokens)
		return err
	})
	return sum, err
}
