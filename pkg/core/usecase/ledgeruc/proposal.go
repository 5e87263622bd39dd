// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// DraftProposal records a new proposal in the DRAFT status. The caller
// must be a participant of p and its declared action-party. The status
// and linear id of p are ignored and a fresh linear id is assigned.
func (uc *UseCase) DraftProposal(
	ctx context.Context, s model.Session, p model.Proposal,
) (model.Proposal, error) {
	if err := requireParticipant(s.Caller, p); err != nil {
		return model.Proposal{}, err
	}
	if err := requireActionParty(s.Caller, p.ActionParty); err != nil {
		return model.Proposal{}, err
	}
	p.Status = model.StatusDraft
	p.LinearID = uuid.New()
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.commit(ctx, c, s, pending{tx: contract.Transition{
			Commands: []contract.Command{contract.ProposalDraft},
			Outputs:  states(p),
			Signers:  s.Signers(),
		}})
	})
	if err != nil {
		return model.Proposal{}, err
	}
	log.Info(ctx, "proposal is drafted", log.LinearID(p.LinearID))
	return p, nil
}

// DistributeProposal offers the id proposal with the given price to
// its counterparty. Only the current action-party may distribute and
// the counterparty becomes the next action-party.
func (uc *UseCase) DistributeProposal(
	ctx context.Context, s model.Session, id uuid.UUID, price model.Amount,
) (model.Proposal, error) {
	return uc.evolveProposal(
		ctx, s, id, contract.ProposalDistribute,
		func(in model.Proposal) (model.Proposal, error) {
			if err := requireActionParty(s.Caller, in.ActionParty); err != nil {
				return in, err
			}
			other, _ := in.Counterparty(s.Caller)
			in.Status = model.StatusPending
			in.Price = price
			in.ActionParty = other
			return in, nil
		},
	)
}

// AgreeProposal accepts the pending offer of the id proposal.
// Only the action-party, i.e., the receiver of the offer, may agree.
func (uc *UseCase) AgreeProposal(
	ctx context.Context, s model.Session, id uuid.UUID,
) (model.Proposal, error) {
	return uc.respondProposal(ctx, s, id, contract.ProposalAgree, model.StatusAgreed)
}

// RejectProposal rejects the pending offer of the id proposal.
// Only the action-party, i.e., the receiver of the offer, may reject.
func (uc *UseCase) RejectProposal(
	ctx context.Context, s model.Session, id uuid.UUID,
) (model.Proposal, error) {
	return uc.respondProposal(ctx, s, id, contract.ProposalReject, model.StatusRejected)
}

func (uc *UseCase) respondProposal(
	ctx context.Context, s model.Session, id uuid.UUID,
	cmd contract.ProposalCommand, status model.Status,
) (model.Proposal, error) {
	return uc.evolveProposal(
		ctx, s, id, cmd,
		func(in model.Proposal) (model.Proposal, error) {
			if err := requireActionParty(s.Caller, in.ActionParty); err != nil {
				return in, err
			}
			in.Status = status
			return in, nil
		},
	)
}

// UpdateProposal changes the price of an agreed proposal. Either one of
// the participants may update it, but with the counter-offer policy,
// the owner may only decrease and the tester may only increase it.
func (uc *UseCase) UpdateProposal(
	ctx context.Context, s model.Session, id uuid.UUID, price model.Amount,
) (model.Proposal, error) {
	return uc.evolveProposal(
		ctx, s, id, contract.ProposalUpdate,
		func(in model.Proposal) (model.Proposal, error) {
			if uc.counterOffers {
				err := checkCounterOffer(s.Caller, in.Owner, in.Price, price)
				if err != nil {
					return in, err
				}
			}
			in.Price = price
			return in, nil
		},
	)
}

// checkCounterOffer requires the payer to decrease the price and the
// payee to increase it.
func checkCounterOffer(caller, payer model.Party, old, price model.Amount) error {
	if caller == payer && price.Quantity < old.Quantity {
		return nil
	}
	if caller != payer && price.Quantity > old.Quantity {
		return nil
	}
	return cerr.Authorization(pkgerrors.Wrapf(
		ruleerrors.ErrCounterOfferDirection,
		"%s may not change %v to %v", caller, old, price,
	))
}

// CancelProposal consumes an agreed proposal without any output.
func (uc *UseCase) CancelProposal(
	ctx context.Context, s model.Session, id uuid.UUID,
) error {
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		in, err := loadDocument[model.Proposal](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		if err = requireParticipant(s.Caller, in.State); err != nil {
			return err
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.ProposalCancel},
				Inputs:   states(in.State),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{in.Ref},
		})
	})
}

// PayProposal pays the price of an agreed proposal from the owner
// tokens to the tester. Only the owner may pay. Tokens are selected
// in their creation order and the change is returned to the owner.
func (uc *UseCase) PayProposal(
	ctx context.Context, s model.Session, id uuid.UUID,
) (out model.Proposal, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		q := uc.vault.Conn(c)
		in, err := loadDocument[model.Proposal](ctx, q, id)
		if err != nil {
			return err
		}
		if err = requireRole(s.Caller, in.State.Owner, "owner"); err != nil {
			return err
		}
		pay, err := uc.pay(ctx, q, in.State.Owner, in.State.Tester, in.State.Price)
		if err != nil {
			return err
		}
		out = in.State
		out.Status = model.StatusPaid
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.ProposalPay},
				Inputs:   append(states(in.State), states(pay.inputs...)...),
				Outputs:  append(states(out), states(pay.outputs...)...),
				Signers:  s.Signers(),
			},
			consumed: append([]uuid.UUID{in.Ref}, pay.refs...),
		})
	})
	if err != nil {
		return model.Proposal{}, err
	}
	log.Info(ctx, "proposal is paid", log.LinearID(id))
	return out, nil
}

// evolveProposal loads the id proposal, lets next compute its next
// version, and records the cmd transition.
func (uc *UseCase) evolveProposal(
	ctx context.Context, s model.Session, id uuid.UUID,
	cmd contract.ProposalCommand,
	next func(in model.Proposal) (model.Proposal, error),
) (out model.Proposal, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		in, err := loadDocument[model.Proposal](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		if err = requireParticipant(s.Caller, in.State); err != nil {
			return err
		}
		if out, err = next(in.State); err != nil {
			return err
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{cmd},
				Inputs:   states(in.State),
				Outputs:  states(out),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{in.Ref},
		})
	})
	if err != nil {
		return model.Proposal{}, err
	}
	log.Info(
		ctx, "proposal is evolved",
		log.LinearID(id), slog.String("command", cmd.String()),
	)
	return out, nil
}
