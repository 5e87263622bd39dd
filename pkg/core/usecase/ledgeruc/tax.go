// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"context"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// TaxRequest is what a vehicle owner presents for a road tax record.
// MOTCopy and InsuranceCopy identify published copies which the owner
// has published for the authority.
type TaxRequest struct {
	Authority     model.Party
	Vehicle       model.Vehicle
	EffectiveDate time.Time
	ExpiryDate    time.Time
	MOTCopy       uuid.UUID
	InsuranceCopy uuid.UUID
}

// TaxDates holds the mutable fields of a road tax record.
type TaxDates struct {
	EffectiveDate time.Time
	ExpiryDate    time.Time
}

// IssueTax pays the tax price from the caller tokens to the authority
// and issues a road tax record for the caller vehicle. Both published
// copies are consumed by the issuance.
func (uc *UseCase) IssueTax(
	ctx context.Context, s model.Session, r TaxRequest,
) (t model.Tax, err error) {
	if r.Authority.Organisation != uc.taxAuthority {
		return model.Tax{}, cerr.Authorization(pkgerrors.Wrapf(
			ruleerrors.ErrNotTaxAuthority,
			"%s is not %s", r.Authority, uc.taxAuthority,
		))
	}
	t = model.Tax{
		Authority:     r.Authority,
		Vehicle:       r.Vehicle,
		Owner:         s.Caller,
		EffectiveDate: r.EffectiveDate,
		ExpiryDate:    r.ExpiryDate,
		LinearID:      uuid.New(),
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		mc, err := uc.ownedCopy(ctx, c, s.Caller, r.MOTCopy)
		if err != nil {
			return err
		}
		ic, err := uc.ownedCopy(ctx, c, s.Caller, r.InsuranceCopy)
		if err != nil {
			return err
		}
		pay, err := uc.pay(
			ctx, uc.vault.Conn(c), t.Owner, t.Authority, uc.taxPrice,
		)
		if err != nil {
			return err
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{
					contract.TaxIssue, contract.PublishedConsume,
				},
				Inputs:  append(states(pay.inputs...), mc, ic),
				Outputs: append(states(t), states(pay.outputs...)...),
				Signers: s.Signers(),
			},
			consumed: pay.refs,
			copies:   []uuid.UUID{mc.ID, ic.ID},
		})
	})
	if err != nil {
		return model.Tax{}, err
	}
	log.Info(
		ctx, "tax is issued",
		log.LinearID(t.LinearID), log.Party("owner", t.Owner),
	)
	return t, nil
}

// UpdateTax changes the dates of the id road tax record. Only its
// authority may update it.
func (uc *UseCase) UpdateTax(
	ctx context.Context, s model.Session, id uuid.UUID, d TaxDates,
) (out model.Tax, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		in, err := loadDocument[model.Tax](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		err = requireRole(s.Caller, in.State.Authority, "tax authority")
		if err != nil {
			return err
		}
		out = in.State
		out.EffectiveDate = d.EffectiveDate
		out.ExpiryDate = d.ExpiryDate
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.TaxUpdate},
				Inputs:   states(in.State),
				Outputs:  states(out),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{in.Ref},
		})
	})
	if err != nil {
		return model.Tax{}, err
	}
	return out, nil
}

// CancelTax consumes the id road tax record without any output.
// Only its authority may cancel it.
func (uc *UseCase) CancelTax(
	ctx context.Context, s model.Session, id uuid.UUID,
) error {
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		in, err := loadDocument[model.Tax](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		err = requireRole(s.Caller, in.State.Authority, "tax authority")
		if err != nil {
			return err
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.TaxCancel},
				Inputs:   states(in.State),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{in.Ref},
		})
	})
}
