// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// MOTResult holds the outcome of an MOT test.
type MOTResult struct {
	TestDate   time.Time
	ExpiryDate time.Time
	Result     bool
}

// IssueMOT consumes the paid proposalID proposal and issues an MOT
// test record for its vehicle. Only the tester may issue it.
func (uc *UseCase) IssueMOT(
	ctx context.Context, s model.Session, proposalID uuid.UUID,
	location string, r MOTResult,
) (m model.MOT, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		p, err := loadDocument[model.Proposal](ctx, uc.vault.Conn(c), proposalID)
		if err != nil {
			return err
		}
		if err = requireRole(s.Caller, p.State.Tester, "tester"); err != nil {
			return err
		}
		m = model.MOT{
			TestDate:   r.TestDate,
			ExpiryDate: r.ExpiryDate,
			Location:   location,
			Tester:     p.State.Tester,
			Vehicle:    p.State.Vehicle,
			Owner:      p.State.Owner,
			Result:     r.Result,
			LinearID:   uuid.New(),
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{
					contract.ProposalConsume, contract.MOTIssue,
				},
				Inputs:  states(p.State),
				Outputs: states(m),
				Signers: s.Signers(),
			},
			consumed: []uuid.UUID{p.Ref},
		})
	})
	if err != nil {
		return model.MOT{}, err
	}
	log.Info(
		ctx, "mot is issued",
		log.LinearID(m.LinearID), log.Party("owner", m.Owner),
	)
	return m, nil
}

// UpdateMOT replaces the test date, expiry date, and result of the id
// MOT. Only its tester may update it. Published copies of the previous
// version are revoked afterwards.
func (uc *UseCase) UpdateMOT(
	ctx context.Context, s model.Session, id uuid.UUID, r MOTResult,
) (out model.MOT, err error) {
	var in model.MOT
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		st, err := loadDocument[model.MOT](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		in = st.State
		if err = requireRole(s.Caller, in.Tester, "tester"); err != nil {
			return err
		}
		out = in
		out.TestDate = r.TestDate
		out.ExpiryDate = r.ExpiryDate
		out.Result = r.Result
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.MOTUpdate},
				Inputs:   states(in),
				Outputs:  states(out),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{st.Ref},
		})
	})
	if err != nil {
		return model.MOT{}, err
	}
	uc.revokeReplaced(ctx, s, in)
	return out, nil
}

// CancelMOT consumes the id MOT without any output. Only its tester may
// cancel it. Published copies of the MOT are revoked afterwards.
func (uc *UseCase) CancelMOT(
	ctx context.Context, s model.Session, id uuid.UUID,
) error {
	var in model.MOT
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		st, err := loadDocument[model.MOT](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		in = st.State
		if err = requireRole(s.Caller, in.Tester, "tester"); err != nil {
			return err
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.MOTCancel},
				Inputs:   states(in),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{st.Ref},
		})
	})
	if err != nil {
		return err
	}
	uc.revokeReplaced(ctx, s, in)
	return nil
}
