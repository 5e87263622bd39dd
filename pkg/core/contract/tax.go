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

func (v *Verifier) verifyTax(cmd TaxCommand, tx Transition, now time.Time) error {
	ins := statesOf[model.Tax](tx.Inputs)
	outs := statesOf[model.Tax](tx.Outputs)
	switch cmd {
	case TaxIssue:
		return v.verifyTaxIssue(tx, ins, outs, now)
	case TaxUpdate:
		return verifyTaxUpdate(tx, ins, outs, now)
	case TaxCancel:
		return verifyTaxCancel(tx, ins)
	default:
		return errors.Wrapf(ruleerrors.ErrUnknownCommand, "tax(%d)", int(cmd))
	}
}

// verifyTaxIssue checks, in order, the output cardinality, payment,
// dates, the authority, the published MOT, and the published policy.
func (v *Verifier) verifyTaxIssue(
	tx Transition, ins, outs []model.Tax, now time.Time,
) error {
	if len(ins) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedInputs, "tax issue consumes no tax",
		)
	}
	if err := requireCount(
		ruleerrors.ErrOutputCount, "tax outputs", len(outs), 1,
	); err != nil {
		return err
	}
	t := outs[0]
	if err := checkTransitionEscrow(
		tx, t.Owner, t.Authority, v.taxPrice,
	); err != nil {
		return err
	}
	if err := checkTaxDates(t, now); err != nil {
		return err
	}
	if t.Authority.Organisation != v.taxAuthority {
		return errors.Wrapf(
			ruleerrors.ErrNotTaxAuthority,
			"%s is not %s", t.Authority, v.taxAuthority,
		)
	}
	if err := requireSigners(tx.Signers, t.Authority); err != nil {
		return err
	}
	m, err := singlePublishedMOT(tx.Inputs)
	if err != nil {
		return err
	}
	err = CheckMOTReference(m, t.Vehicle, t.Owner, t.ExpiryDate, now)
	if err != nil {
		return err
	}
	i, err := singlePublishedInsurance(tx.Inputs)
	if err != nil {
		return err
	}
	return CheckInsuranceReference(i, t)
}

func verifyTaxUpdate(tx Transition, ins, outs []model.Tax, now time.Time) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "tax inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if err := requireCount(
		ruleerrors.ErrOutputCount, "tax outputs", len(outs), 1,
	); err != nil {
		return err
	}
	in, out := ins[0], outs[0]
	if err := checkTaxDates(out, now); err != nil {
		return err
	}
	if err := requireOnlyChanged(
		TaxUpdate, DiffTax(in, out), taxMutable[TaxUpdate],
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, in.Authority)
}

func verifyTaxCancel(tx Transition, ins []model.Tax) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "tax inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if len(tx.Outputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs, "tax cancel creates nothing",
		)
	}
	return requireSigners(tx.Signers, ins[0].Authority)
}

// checkTaxDates requires the tax to take effect today or later, to
// expire after now, and to take effect before its expiry.
func checkTaxDates(t model.Tax, now time.Time) error {
	if t.EffectiveDate.Before(model.StartOfDay(now)) {
		return errors.Wrapf(
			ruleerrors.ErrEffectiveInPast,
			"tax takes effect at %v", t.EffectiveDate,
		)
	}
	if !t.ExpiryDate.After(now) {
		return errors.Wrapf(
			ruleerrors.ErrAlreadyExpired,
			"tax expires at %v, not after %v", t.ExpiryDate, now,
		)
	}
	if !t.EffectiveDate.Before(t.ExpiryDate) {
		return errors.Wrapf(
			ruleerrors.ErrExpiryNotAfterEffective,
			"tax from %v to %v", t.EffectiveDate, t.ExpiryDate,
		)
	}
	return nil
}
