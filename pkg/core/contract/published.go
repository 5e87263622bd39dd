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

func (v *Verifier) verifyPublished(cmd PublishedCommand, tx Transition) error {
	ins := statesOf[model.Published](tx.Inputs)
	outs := statesOf[model.Published](tx.Outputs)
	switch cmd {
	case PublishedIssue:
		return verifyPublishedIssue(tx, outs)
	case PublishedConsume:
		return verifyPublishedConsume(tx, ins, outs)
	case PublishedRevoke:
		return verifyPublishedRevoke(tx, ins)
	default:
		return errors.Wrapf(
			ruleerrors.ErrUnknownCommand, "published(%d)", int(cmd),
		)
	}
}

func verifyPublishedIssue(tx Transition, outs []model.Published) error {
	if len(tx.Inputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedInputs, "publishing consumes nothing",
		)
	}
	if len(tx.Outputs) != 1 || len(outs) != 1 || outs[0].Doc == nil {
		return errors.Wrap(
			ruleerrors.ErrOutputCount,
			"publishing creates exactly one published copy",
		)
	}
	return requireSigners(tx.Signers, outs[0].Doc.Participants()...)
}

func verifyPublishedConsume(tx Transition, ins, outs []model.Published) error {
	if len(outs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs,
			"consuming may not create published copies",
		)
	}
	if len(ins) == 0 {
		return errors.Wrap(
			ruleerrors.ErrInputCount, "no published copy is consumed",
		)
	}
	for _, p := range ins {
		if err := requireSigners(tx.Signers, p.Owner); err != nil {
			return err
		}
	}
	return nil
}

func verifyPublishedRevoke(tx Transition, ins []model.Published) error {
	if len(ins) != len(tx.Inputs) {
		return errors.Wrapf(
			ruleerrors.ErrNotPublished,
			"%d inputs are not published copies", len(tx.Inputs)-len(ins),
		)
	}
	if len(ins) == 0 {
		return errors.Wrap(
			ruleerrors.ErrInputCount, "no published copy is revoked",
		)
	}
	for _, p := range ins[1:] {
		if p.Doc == nil || !p.Wraps(ins[0].Doc) {
			return errors.Wrap(
				ruleerrors.ErrMixedPublishedDocuments,
				"copies of distinct documents may not be revoked together",
			)
		}
	}
	if len(tx.Outputs) != 0 {
		return errors.Wrap(
			ruleerrors.ErrUnexpectedOutputs, "revocation creates nothing",
		)
	}
	return nil
}
