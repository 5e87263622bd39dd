// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

func TestSelectTokens(t *testing.T) {
	payer := model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
	payee := model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	stored := func(amounts ...model.Amount) []repo.Stored[model.Token] {
		var ts []repo.Stored[model.Token]
		for _, a := range amounts {
			ts = append(ts, repo.Stored[model.Token]{
				Ref:   uuid.New(),
				State: model.Token{Holder: payer, Amount: a},
			})
		}
		return ts
	}
	usd := model.Amount{Quantity: 50000, Currency: "USD"}

	t.Run("exact", func(t *testing.T) {
		p, err := selectTokens(stored(model.GBP(100)), payer, payee, model.GBP(100))
		require.NoError(t, err)
		assert.Len(t, p.inputs, 1)
		assert.Equal(t, []model.Token{{Holder: payee, Amount: model.GBP(100)}}, p.outputs)
	})
	t.Run("change and foreign currency", func(t *testing.T) {
		ts := stored(usd, model.GBP(60), model.GBP(60), model.GBP(60))
		p, err := selectTokens(ts, payer, payee, model.GBP(100))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ts[1].Ref, ts[2].Ref}, p.refs)
		assert.Equal(t, []model.Token{
			{Holder: payee, Amount: model.GBP(100)},
			{Holder: payer, Amount: model.GBP(20)},
		}, p.outputs)
		err = contract.CheckEscrow(p.inputs, p.outputs, payer, payee, model.GBP(100))
		assert.NoError(t, err, "selected tokens must satisfy the escrow")
	})
	t.Run("insufficient", func(t *testing.T) {
		_, err := selectTokens(stored(usd, model.GBP(60)), payer, payee, model.GBP(100))
		assert.ErrorIs(t, err, ruleerrors.ErrNoFunds)
	})
	t.Run("none", func(t *testing.T) {
		_, err := selectTokens(nil, payer, payee, model.GBP(100))
		assert.ErrorIs(t, err, ruleerrors.ErrNoFunds)
	})
}
