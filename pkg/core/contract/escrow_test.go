// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

func TestCheckEscrow(t *testing.T) {
	euro := model.Amount{Quantity: 10000, Currency: "EUR"}
	for _, tc := range []struct {
		name    string
		inputs  []model.Token
		outputs []model.Token
		err     error
	}{
		{
			name:    "exact payment",
			inputs:  []model.Token{token(owner, 100)},
			outputs: []model.Token{token(tester, 100)},
		},
		{
			name:    "payment with change from two tokens",
			inputs:  []model.Token{token(owner, 70), token(owner, 50)},
			outputs: []model.Token{token(tester, 100), token(owner, 20)},
		},
		{
			name:    "payee split in two tokens",
			inputs:  []model.Token{token(owner, 100)},
			outputs: []model.Token{token(tester, 60), token(tester, 40)},
		},
		{
			name: "currency mismatch",
			inputs: []model.Token{
				token(owner, 100), {Holder: owner, Amount: euro},
			},
			outputs: []model.Token{token(tester, 100), {Holder: owner, Amount: euro}},
			err:     ruleerrors.ErrCurrencyMismatch,
		},
		{
			name:    "paid to someone else",
			inputs:  []model.Token{token(owner, 100)},
			outputs: []model.Token{token(bob, 100)},
			err:     ruleerrors.ErrWrongPayeeAmount,
		},
		{
			name:    "overpaid",
			inputs:  []model.Token{token(owner, 101)},
			outputs: []model.Token{token(tester, 101)},
			err:     ruleerrors.ErrWrongPayeeAmount,
		},
		{
			name:    "no inputs",
			outputs: []model.Token{token(tester, 100)},
			err:     ruleerrors.ErrNoFunds,
		},
		{
			name:    "zero input with negative change",
			inputs:  []model.Token{token(owner, 0)},
			outputs: []model.Token{token(tester, 100), token(owner, -100)},
			err:     ruleerrors.ErrNonPositiveToken,
		},
		{
			name:    "negative input",
			inputs:  []model.Token{token(owner, 200), token(owner, -100)},
			outputs: []model.Token{token(tester, 100)},
			err:     ruleerrors.ErrNonPositiveToken,
		},
		{
			name:    "zero change",
			inputs:  []model.Token{token(owner, 100)},
			outputs: []model.Token{token(tester, 100), token(owner, 0)},
			err:     ruleerrors.ErrNonPositiveToken,
		},
		{
			name:   "inputs overflow",
			inputs: []model.Token{huge(owner), token(owner, 100)},
			outputs: []model.Token{
				token(tester, 100), huge(owner),
			},
			err: ruleerrors.ErrTokenOverflow,
		},
		{
			name:    "payee outputs overflow",
			inputs:  []model.Token{token(owner, 100)},
			outputs: []model.Token{huge(tester), huge(tester)},
			err:     ruleerrors.ErrTokenOverflow,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := contract.CheckEscrow(
				tc.inputs, tc.outputs, owner, tester, model.GBP(100),
			)
			if tc.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, ruleerrors.Payment, ruleerrors.KindOf(err))
		})
	}
}

func huge(holder model.Party) model.Token {
	return model.Token{
		Holder: holder,
		Amount: model.Amount{Quantity: math.MaxInt64, Currency: "GBP"},
	}
}

func TestDiffFields(t *testing.T) {
	a := insurance(model.StatusAgreed)
	b := a
	b.ExpiryDate = b.ExpiryDate.In(time.FixedZone("BST", 3600))
	assert.Zero(t, contract.DiffInsurance(a, b), "same instant")

	b.Coverage = "third party"
	b.Status = model.StatusIssued
	d := contract.DiffInsurance(a, b)
	assert.Equal(t, contract.FieldCoverage|contract.FieldStatus, d)
	assert.Equal(t, "status,coverage", d.String())
}
