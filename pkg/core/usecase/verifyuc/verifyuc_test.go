// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package verifyuc_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

type observation struct {
	commands, outcome string
}

type fakeMetrics []observation

func (fm *fakeMetrics) ObserveVerification(
	commands, outcome string, _ time.Duration,
) {
	*fm = append(*fm, observation{commands, outcome})
}

func TestClassify(t *testing.T) {
	plain := errors.New("database is down")
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"authorization", pkgerrors.Wrap(ruleerrors.ErrMissingSigner, "x"), http.StatusForbidden},
		{"status", ruleerrors.ErrInputStatus, http.StatusUnprocessableEntity},
		{"payment", pkgerrors.Wrap(ruleerrors.ErrValueLeak, "x"), http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := verifyuc.Classify(c.err)
			var ce *cerr.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, c.code, ce.HTTPStatusCode)
			assert.ErrorIs(t, err, c.err)
		})
	}
	assert.NoError(t, verifyuc.Classify(nil))
	assert.Same(t, plain, verifyuc.Classify(plain))
}

func TestVerifyRecordsOutcomes(t *testing.T) {
	v, err := contract.New()
	require.NoError(t, err)
	var m fakeMetrics
	uc, err := verifyuc.New(v, verifyuc.WithMetrics(&m))
	require.NoError(t, err)
	require.Same(t, v, uc.Verifier())

	owner := model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	err = uc.Verify(context.Background(), contract.Transition{
		Commands: []contract.Command{contract.ProposalDraft},
		Outputs: []model.State{model.Proposal{
			Owner:       owner,
			Price:       model.GBP(100),
			Status:      model.StatusDraft,
			ActionParty: owner,
		}},
		Signers: []model.Party{owner},
	}, now)
	assert.ErrorIs(t, err, ruleerrors.ErrIncompleteVehicle)

	err = uc.Verify(context.Background(), contract.Transition{
		Commands: []contract.Command{contract.ProposalDraft, contract.ProposalDraft},
	}, now)
	assert.ErrorIs(t, err, ruleerrors.ErrMultipleCommands)

	assert.Equal(t, fakeMetrics{
		{"proposal.draft", "StructuralViolation"},
		{"proposal.draft+proposal.draft", "StructuralViolation"},
	}, m)

	_, err = verifyuc.New(nil)
	assert.Error(t, err)
}
