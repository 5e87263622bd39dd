// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract

import (
	"time"

	"github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

func (v *Verifier) verifyInsurance(
	cmd InsuranceCommand, tx Transition, now time.Time,
) error {
	ins := statesOf[model.Insurance](tx.Inputs)
	outs := statesOf[model.Insurance](tx.Outputs)
	if len(outs) == 1 {
		if err := checkInsuranceTerms(outs[0]); err != nil {
			return err
		}
	}
	switch cmd {
	case InsuranceDraft:
		return verifyInsuranceDraft(tx, outs)
	case InsuranceCancel:
		return verifyInsuranceCancel(tx, ins)
	}
	if err := requireCount(
		ruleerrors.ErrInputCount, "insurance inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if err := requireCount(
		ruleerrors.ErrOutputCount, "insurance outputs", len(outs), 1,
	); err != nil {
		return err
	}
	if cmd != InsuranceIssue {
		if err := requireSingleState(tx); err != nil {
			return err
		}
	}
	in, out := ins[0], outs[0]
	switch cmd {
	case InsuranceDistribute:
		return verifyInsuranceDistribute(tx, in, out)
	case InsuranceAgree:
		return verifyInsuranceAgree(tx, in, out)
	case InsuranceReject:
		return v.verifyInsuranceReject(tx, in, out)
	case InsuranceUpdate:
		return verifyInsuranceUpdate(tx, in, out)
	case InsuranceIssue:
		return verifyInsuranceIssue(tx, in, out, now)
	default:
		return errors.Wrapf(
			ruleerrors.ErrUnknownCommand, "insurance(%d)", int(cmd),
		)
	}
}

// checkInsuranceTerms is checked for every produced policy.
func checkInsuranceTerms(i model.Insurance) error {
	if !i.Price.IsPositive() {
		return errors.Wrapf(
			ruleerrors.ErrNonPositivePrice, "insurance price %v", i.Price,
		)
	}
	if !i.ExpiryDate.After(i.EffectiveDate) {
		return errors.Wrapf(
			ruleerrors.ErrExpiryNotAfterEffective,
			"insurance from %v to %v", i.EffectiveDate, i.ExpiryDate,
		)
	}
	return nil
}

func verifyInsuranceDraft(tx Transition, outs []model.Insurance) error {
	if len(tx.Inputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedInputs, "insurance draft consumes nothing",
		)
	}
	if len(tx.Outputs) != 1 || len(outs) != 1 {
		return errors.Wrap(
			ruleerrors.ErrOutputCount,
			"insurance draft creates exactly one policy",
		)
	}
	out := outs[0]
	if !out.Vehicle.IsComplete() {
		return errors.Wrapf(
			ruleerrors.ErrIncompleteVehicle, "vehicle %+v", out.Vehicle,
		)
	}
	return requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusDraft,
	)
}

func verifyInsuranceDistribute(tx Transition, in, out model.Insurance) error {
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
		InsuranceDistribute, DiffInsurance(in, out),
		insuranceMutable[InsuranceDistribute],
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, out.Insurer, out.Insured)
}

func verifyInsuranceAgree(tx Transition, in, out model.Insurance) error {
	if err := requireOnlyChanged(
		InsuranceAgree, DiffInsurance(in, out),
		insuranceMutable[InsuranceAgree],
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
	return requireSigners(tx.Signers, out.Insurer, out.Insured)
}

func (v *Verifier) verifyInsuranceReject(
	tx Transition, in, out model.Insurance,
) error {
	if err := requireOnlyChanged(
		InsuranceReject, DiffInsurance(in, out),
		insuranceMutable[InsuranceReject],
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
	return v.requireRejectSigners(
		tx.Signers, in.ActionParty, in.Insurer, in.Insured,
	)
}

func verifyInsuranceUpdate(tx Transition, in, out model.Insurance) error {
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
	if err := requireOnlyChanged(
		InsuranceUpdate, DiffInsurance(in, out),
		insuranceMutable[InsuranceUpdate],
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, out.Insurer, out.Insured)
}

func verifyInsuranceCancel(tx Transition, ins []model.Insurance) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "insurance inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if len(tx.Outputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs, "insurance cancel creates nothing",
		)
	}
	in := ins[0]
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, in.Insurer, in.Insured)
}

// verifyInsuranceIssue checks the payment of an agreed policy and the
// published MOT which backs it.
func verifyInsuranceIssue(
	tx Transition, in, out model.Insurance, now time.Time,
) error {
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "input", in.Status, model.StatusAgreed,
	); err != nil {
		return err
	}
	if len(statesOf[model.Token](tx.Inputs)) == 0 {
		return errors.Wrap(ruleerrors.ErrNoFunds, "no input tokens")
	}
	if err := requireStatus(
		ruleerrors.ErrOutputStatus, "output", out.Status, model.StatusIssued,
	); err != nil {
		return err
	}
	if err := checkTransitionEscrow(
		tx, in.Insured, in.Insurer, in.Price,
	); err != nil {
		return err
	}
	if err := requireOnlyChanged(
		InsuranceIssue, DiffInsurance(in, out),
		insuranceMutable[InsuranceIssue],
	); err != nil {
		return err
	}
	if err := requireSigners(tx.Signers, out.Insurer, out.Insured); err != nil {
		return err
	}
	m, err := singlePublishedMOT(tx.Inputs)
	if err != nil {
		return err
	}
	return CheckMOTReference(m, out.Vehicle, out.Insured, out.ExpiryDate, now)
}
