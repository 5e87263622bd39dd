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

func (v *Verifier) verifyProposal(cmd ProposalCommand, tx Transition) error {
	ins := statesOf[model.Proposal](tx.Inputs)
	outs := statesOf[model.Proposal](tx.Outputs)
	switch cmd {
	case ProposalDraft:
		return verifyProposalDraft(tx, outs)
	case ProposalCancel:
		return verifyProposalCancel(tx, ins)
	case ProposalConsume:
		return verifyProposalConsume(tx, ins, outs)
	}
	// remaining commands evolve one proposal into another one
	if err := requireCount(
		ruleerrors.ErrInputCount, "proposal inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if err := requireCount(
		ruleerrors.ErrOutputCount, "proposal outputs", len(outs), 1,
	); err != nil {
		return err
	}
	if cmd != ProposalPay {
		if err := requireSingleState(tx); err != nil {
			return err
		}
	}
	in, out := ins[0], outs[0]
	switch cmd {
	case ProposalDistribute:
		return verifyProposalDistribute(tx, in, out)
	case ProposalAgree:
		return verifyProposalAgree(tx, in, out)
	case ProposalReject:
		return v.verifyProposalReject(tx, in, out)
	case ProposalUpdate:
		return verifyProposalUpdate(tx, in, out)
	case ProposalPay:
		return verifyProposalPay(tx, in, out)
	default:
		return errors.Wrapf(ruleerrors.ErrUnknownCommand, "proposal(%d)", int(cmd))
	}
}

func verifyProposalDraft(tx Transition, outs []model.Proposal) error {
	if len(tx.Inputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedInputs, "proposal draft consumes nothing",
		)
	}
	if len(tx.Outputs) != 1 || len(outs) != 1 {
		return errors.Wrap(
			ruleerrors.ErrOutputCount,
			"proposal draft creates exactly one proposal",
		)
	}
	out := outs[0]
	if !out.Vehicle.IsComplete() {
		return errors.Wrapf(
			ruleerrors.ErrIncompleteVehicle, "vehicle %+v", out.Vehicle,
		)
	}
	if !out.Price.IsPositive() {
		return errors.Wrapf(
			ruleerrors.ErrNonPositivePrice, "proposal price %v", out.Price,
		)
	}
	return requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusDraft,
	)
}

func verifyProposalDistribute(tx Transition, in, out model.Proposal) error {
	if err := requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusPending,
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status,
		model.StatusDraft, model.StatusPending,
	); err != nil {
		return err
	}
	if err := requireOnlyChanged(
		ProposalDistribute, DiffProposal(in, out),
		proposalMutable[ProposalDistribute],
	); err != nil {
		return err
	}
	if out.Price.IsNegative() {
		return errors.Wrapf(
			ruleerrors.ErrNegativePrice, "proposal price %v", out.Price,
		)
	}
	return requireSigners(tx.Signers, out.Tester, out.Owner)
}

func verifyProposalAgree(tx Transition, in, out model.Proposal) error {
	if err := requireOnlyChanged(
		ProposalAgree, DiffProposal(in, out), proposalMutable[ProposalAgree],
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusPending,
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, out.Tester, out.Owner)
}

func (v *Verifier) verifyProposalReject(tx Transition, in, out model.Proposal) error {
	if err := requireOnlyChanged(
		ProposalReject, DiffProposal(in, out), proposalMutable[ProposalReject],
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusPending,
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusRejected,
	); err != nil {
		return err
	}
	return v.requireRejectSigners(tx.Signers, in.ActionParty, in.Tester, in.Owner)
}

func verifyProposalUpdate(tx Transition, in, out model.Proposal) error {
	if err := requireOnlyChanged(
		ProposalUpdate, DiffProposal(in, out), proposalMutable[ProposalUpdate],
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	if out.Price.IsNegative() {
		return errors.Wrapf(
			ruleerrors.ErrNegativePrice, "proposal price %v", out.Price,
		)
	}
	return requireSigners(tx.Signers, out.Tester, out.Owner)
}

func verifyProposalCancel(tx Transition, ins []model.Proposal) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "proposal inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if len(tx.Outputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs, "proposal cancel creates nothing",
		)
	}
	in := ins[0]
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, in.Tester, in.Owner)
}

func verifyProposalPay(tx Transition, in, out model.Proposal) error {
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	if len(statesOf[model.Token](tx.Inputs)) == 0 {
		return errors.Wrap(ruleerrors.ErrNoFunds, "no input tokens")
	}
	if err := requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusPaid,
	); err != nil {
		return err
	}
	if err := checkTransitionEscrow(
		tx, in.Owner, in.Tester, in.Price,
	); err != nil {
		return err
	}
	if err := requireOnlyChanged(
		ProposalPay, DiffProposal(in, out), proposalMutable[ProposalPay],
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, out.Tester, out.Owner)
}

func verifyProposalConsume(tx Transition, ins, outs []model.Proposal) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "proposal inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", ins[0].Status, model.StatusPaid,
	); err != nil {
		return err
	}
	if len(outs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs,
			"a consumed proposal may not be recreated",
		)
	}
	return requireCount(
		ruleerrors.ErrOutputCount, "mot outputs",
		len(statesOf[model.MOT](tx.Outputs)), 1,
	)
}

// requireRejectSigners applies the reject signer policy. The responder
// is the action-party of the rejected offer while a and b are the two
// participants of the document.
func (v *Verifier) requireRejectSigners(
	signers []model.Party, responder, a, b model.Party,
) error {
	switch v.rejectPolicy {
	case RejectByBoth:
		return requireSigners(signers, a, b)
	case RejectByAny:
		return requireAnySigner(signers, a, b)
	default:
		return requireSigners(signers, responder)
	}
}
