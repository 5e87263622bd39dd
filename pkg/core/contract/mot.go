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

func (v *Verifier) verifyMOT(cmd MOTCommand, tx Transition, now time.Time) error {
	ins := statesOf[model.MOT](tx.Inputs)
	outs := statesOf[model.MOT](tx.Outputs)
	switch cmd {
	case MOTIssue:
		return verifyMOTIssue(tx, ins, outs, now)
	case MOTUpdate:
		return verifyMOTUpdate(tx, ins, outs, now)
	case MOTCancel:
		return verifyMOTCancel(tx, ins)
	default:
		return errors.Wrapf(ruleerrors.ErrUnknownCommand, "mot(%d)", int(cmd))
	}
}

// verifyMOTIssue checks the bridge from a paid proposal to the MOT
// test record which is issued by consuming it.
func verifyMOTIssue(tx Transition, ins, outs []model.MOT, now time.Time) error {
	props := statesOf[model.Proposal](tx.Inputs)
	if err := requireCount(
		ruleerrors.ErrInputCount, "proposal inputs", len(props), 1,
	); err != nil {
		return err
	}
	p := props[0]
	if err := requireStatus(
		ruleerrors.ErrInputStatus, "proposal", p.Status, model.StatusPaid,
	); err != nil {
		return err
	}
	if len(ins) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedInputs, "mot issue consumes no mot",
		)
	}
	if err := requireCount(
		ruleerrors.ErrOutputCount, "mot outputs", len(outs), 1,
	); err != nil {
		return err
	}
	m := outs[0]
	switch {
	case m.Tester != p.Tester:
		return errors.Wrapf(
			ruleerrors.ErrMismatchingBridge,
			"tester %s instead of %s", m.Tester, p.Tester,
		)
	case m.Owner != p.Owner:
		return errors.Wrapf(
			ruleerrors.ErrMismatchingBridge,
			"owner %s instead of %s", m.Owner, p.Owner,
		)
	case m.Vehicle != p.Vehicle:
		return errors.Wrapf(
			ruleerrors.ErrMismatchingBridge,
			"vehicle %d instead of %d", m.Vehicle.ID, p.Vehicle.ID,
		)
	}
	if err := checkMOTDates(m, now); err != nil {
		return err
	}
	return requireSigners(tx.Signers, m.Tester)
}

func verifyMOTUpdate(tx Transition, ins, outs []model.MOT, now time.Time) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "mot inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if err := requireCount(
		ruleerrors.ErrOutputCount, "mot outputs", len(outs), 1,
	); err != nil {
		return err
	}
	in, out := ins[0], outs[0]
	if err := checkMOTDates(out, now); err != nil {
		return err
	}
	if err := requireOnlyChanged(
		MOTUpdate, DiffMOT(in, out), motMutable[MOTUpdate],
	); err != nil {
		return err
	}
	return requireSigners(tx.Signers, in.Tester)
}

func verifyMOTCancel(tx Transition, ins []model.MOT) error {
	if err := requireCount(
		ruleerrors.ErrInputCount, "mot inputs", len(ins), 1,
	); err != nil {
		return err
	}
	if len(tx.Outputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs, "mot cancel creates nothing",
		)
	}
	return requireSigners(tx.Signers, ins[0].Tester)
}

// checkMOTDates requires the test to be taken no later than now and
// to expire after now.
func checkMOTDates(m model.MOT, now time.Time) error {
	if m.TestDate.After(now) {
		return errors.Wrapf(
			ruleerrors.ErrTestDateInFuture,
			"tested at %v after %v", m.TestDate, now,
		)
	}
	if !m.ExpiryDate.After(now) {
		return errors.Wrapf(
			ruleerrors.ErrAlreadyExpired,
			"mot expires at %v, not after %v", m.ExpiryDate, now,
		)
	}
	return nil
}
