// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract

import (
	"github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Transition is a proposed atomic change of the ledger. It consumes
// the Inputs states and produces the Outputs states. Each command
// expresses the intent of the transition regarding one document type
// and Signers lists the parties which have authorized the transition.
// The escrow tokens and published copies which are consumed or created
// along with documents are listed among Inputs and Outputs too.
//
// A Transition is built once and never modified by the verification.
type Transition struct {
	Commands []Command
	Inputs   []model.State
	Outputs  []model.State
	Signers  []model.Party
}

// statesOf returns those states which have the T dynamic type,
// keeping their relative order.
func statesOf[T model.State](states []model.State) []T {
	var ts []T
	for _, s := range states {
		if t, ok := s.(T); ok {
			ts = append(ts, t)
		}
	}
	return ts
}

// publishedOf returns the documents with the T dynamic type which are
// wrapped by published copies among states.
func publishedOf[T model.Document](states []model.State) []T {
	var ts []T
	for _, p := range statesOf[model.Published](states) {
		if t, ok := p.Doc.(T); ok {
			ts = append(ts, t)
		}
	}
	return ts
}

// hasStateOf reports whether a state with the T dynamic type exists
// among the inputs or outputs of tx.
func hasStateOf[T model.State](tx Transition) bool {
	return len(statesOf[T](tx.Inputs)) > 0 ||
		len(statesOf[T](tx.Outputs)) > 0
}

// requireSigners returns ErrMissingSigner if any one of the required
// parties is absent from the signers list.
func requireSigners(signers []model.Party, required ...model.Party) error {
	for _, p := range required {
		if !model.ContainsParty(signers, p) {
			return errors.Wrapf(
				ruleerrors.ErrMissingSigner, "%s has not signed", p,
			)
		}
	}
	return nil
}

// requireAnySigner returns ErrMissingSigner if none of the candidates
// has signed.
func requireAnySigner(signers []model.Party, candidates ...model.Party) error {
	for _, p := range candidates {
		if model.ContainsParty(signers, p) {
			return nil
		}
	}
	return errors.Wrapf(
		ruleerrors.ErrMissingSigner, "none of %v has signed", candidates,
	)
}

func requireCount(rule ruleerrors.RuleError, what string, got, want int) error {
	if got != want {
		return errors.Wrapf(rule, "%s: want %d, got %d", what, want, got)
	}
	return nil
}

// requireSingleState checks that tx consumes exactly one state and
// produces exactly one state, whatever their types are.
func requireSingleState(tx Transition) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "transition inputs", len(tx.Inputs), 1,
	); err != nil {
		return err
	}
	return requireCount(
		ruleerrors.ErrOutputCount, "transition outputs", len(tx.Outputs), 1,
	)
}

func requireStatus(
	rule ruleerrors.RuleError, what string, got model.Status,
	allowed ...model.Status,
) error {
	for _, s := range allowed {
		if got == s {
			return nil
		}
	}
	return errors.Wrapf(rule, "%s status %v not in %v", what, got, allowed)
}
