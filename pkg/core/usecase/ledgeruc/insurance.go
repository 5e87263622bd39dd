// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// InsuranceTerms holds the negotiable terms of an insurance policy.
type InsuranceTerms struct {
	Price         model.Amount
	Coverage      string
	EffectiveDate time.Time
	ExpiryDate    time.Time
}

func (t InsuranceTerms) applyTo(i model.Insurance) model.Insurance {
	i.Price = t.Price
	i.Coverage = t.Coverage
	i.EffectiveDate = t.EffectiveDate
	i.ExpiryDate = t.ExpiryDate
	return i
}

// DraftInsurance records a new policy in the DRAFT status. The caller
// must be a participant of i and its declared action-party.
func (uc *UseCase) DraftInsurance(
	ctx context.Context, s model.Session, i model.Insurance,
) (model.Insurance, error) {
	if err := requireParticipant(s.Caller, i); err != nil {
		return model.Insurance{}, err
	}
	if err := requireActionParty(s.Caller, i.ActionParty); err != nil {
		return model.Insurance{}, err
	}
	i.Status = model.StatusDraft
	i.LinearID = uuid.New()
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.commit(ctx, c, s, pending{tx: contract.Transition{
			Commands: []contract.Command{contract.InsuranceDraft},
			Outputs:  states(i),
			Signers:  s.Signers(),
		}})
	})
	if err != nil {
		return model.Insurance{}, err
	}
	log.Info(ctx, "insurance is drafted", log.LinearID(i.LinearID))
	return i, nil
}

// DistributeInsurance offers the id policy with the given terms to
// its counterparty which becomes the next action-party.
func (uc *UseCase) DistributeInsurance(
	ctx context.Context, s model.Session, id uuid.UUID, t InsuranceTerms,
) (model.Insurance, error) {
	return uc.evolveInsurance(
		ctx, s, id, contract.InsuranceDistribute,
		func(in model.Insurance) (model.Insurance, error) {
			if err := requireActionParty(s.Caller, in.ActionParty); err != nil {
				return in, err
			}
			other, _ := in.Counterparty(s.Caller)
			in = t.applyTo(in)
			in.Status = model.StatusPending
			in.ActionParty = other
			return in, nil
		},
	)
}

// AgreeInsurance accepts the pending offer of the id policy.
func (uc *UseCase) AgreeInsurance(
	ctx context.Context, s model.Session, id uuid.UUID,
) (model.Insurance, error) {
	return uc.respondInsurance(
		ctx, s, id, contract.InsuranceAgree, model.StatusAgreed,
	)
}

// RejectInsurance rejects the pending offer of the id policy.
func (uc *UseCase) RejectInsurance(
	ctx context.Context, s model.Session, id uuid.UUID,
) (model.Insurance, error) {
	return uc.respondInsurance(
		ctx, s, id, contract.InsuranceReject, model.StatusRejected,
	)
}

func (uc *UseCase) respondInsurance(
	ctx context.Context, s model.Session, id uuid.UUID,
	cmd contract.InsuranceCommand, status model.Status,
) (model.Insurance, error) {
	return uc.evolveInsurance(
		ctx, s, id, cmd,
		func(in model.Insurance) (model.Insurance, error) {
			if err := requireActionParty(s.Caller, in.ActionParty); err != nil {
				return in, err
			}
			in.Status = status
			return in, nil
		},
	)
}

// UpdateInsurance changes the terms of an agreed policy. With the
// counter-offer policy, the insured may only decrease and the insurer
// may only increase the price.
func (uc *UseCase) UpdateInsurance(
	ctx context.Context, s model.Session, id uuid.UUID, t InsuranceTerms,
) (model.Insurance, error) {
	return uc.evolveInsurance(
		ctx, s, id, contract.InsuranceUpdate,
		func(in model.Insurance) (model.Insurance, error) {
			if uc.counterOffers {
				err := checkCounterOffer(s.Caller, in.Insured, in.Price, t.Price)
				if err != nil {
					return in, err
				}
			}
			return t.applyTo(in), nil
		},
	)
}

// CancelInsurance consumes an agreed policy without any output.
func (uc *UseCase) CancelInsurance(
	ctx context.Context, s model.Session, id uuid.UUID,
) error {
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		in, err := loadDocument[model.Insurance](ctx, uc.vault.Conn(c), id)
		if err != nil {
			return err
		}
		if err = requireParticipant(s.Caller, in.State); err != nil {
			return err
		}
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{contract.InsuranceCancel},
				Inputs:   states(in.State),
				Signers:  s.Signers(),
			},
			consumed: []uuid.UUID{in.Ref},
		})
	})
}

// IssueInsurance pays the price of the agreed id policy from the
// insured tokens to the insurer and consumes the motCopy published
// copy of an MOT which backs the policy. Only the insured may issue
// a policy and the MOT copy must be published by the insured.
func (uc *UseCase) IssueInsurance(
	ctx context.Context, s model.Session, id, motCopy uuid.UUID,
) (out model.Insurance, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		q := uc.vault.Conn(c)
		in, err := loadDocument[model.Insurance](ctx, q, id)
		if err != nil {
			return err
		}
		i := in.State
		if err = requireRole(s.Caller, i.Insured, "insured"); err != nil {
			return err
		}
		cp, err := uc.ownedCopy(ctx, c, i.Insured, motCopy)
		if err != nil {
			return err
		}
		pay, err := uc.pay(ctx, q, i.Insured, i.Insurer, i.Price)
		if err != nil {
			return err
		}
		out = i
		out.Status = model.StatusIssued
		inputs := append(states(i), states(pay.inputs...)...)
		return uc.commit(ctx, c, s, pending{
			tx: contract.Transition{
				Commands: []contract.Command{
					contract.InsuranceIssue, contract.PublishedConsume,
				},
				Inputs:  append(inputs, cp),
				Outputs: append(states(out), states(pay.outputs...)...),
				Signers: s.Signers(),
			},
			consumed: append([]uuid.UUID{in.Ref}, pay.refs...),
			copies:   []uuid.UUID{cp.ID},
		})
	})
	if err != nil {
		return model.Insurance{}, err
	}
	log.Info(
		ctx, "insurance is issued",
		log.LinearID(id), log.Party("insured", out.Insured),
	)
	return out, nil
}

func (uc *UseCase) evolveInsurance(
	ctx context.Context, s model.Session, id uuid.UUID,
	cmd contract.InsuranceCommand,
	next func(in model.Insurance) (model.Insurance, error),
) (out model.Insurance, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		in, err := loadDocument[model.Insurance](ctx, uc.vault.Conn(c), id)
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
		return model.Insurance{}, err
	}
	log.Info(
		ctx, "insurance is evolved",
		log.LinearID(id), slog.String("command", cmd.String()),
	)
	return out, nil
}
