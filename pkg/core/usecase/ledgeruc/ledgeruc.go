// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ledgeruc contains the ledger UseCase which drives the
// vehicle certification documents through their life cycles:
//  1. Negotiating, paying, and consuming MOT proposals,
//  2. Issuing, updating, and cancelling MOT test records,
//  3. Negotiating and issuing insurance policies,
//  4. Issuing, updating, and cancelling road tax records,
//  5. Depositing escrow tokens and querying balances.
//
// Each operation checks who may run it, builds a transition, verifies
// it, and records it in the vault atomically. The caller identity and
// the current time are passed explicitly by a model.Session.
package ledgeruc

import (
	"context"
	"fmt"
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

// Checker verifies a transition before it is recorded.
// The *verifyuc.UseCase implements this interface.
type Checker interface {
	Verify(ctx context.Context, tx contract.Transition, now time.Time) error
}

// Revoker revokes the published copies of a document which is being
// replaced or cancelled. The *publishuc.UseCase implements it.
type Revoker interface {
	RevokeDocument(ctx context.Context, s model.Session, doc model.Document) error
}

// UseCase represents the ledger use case.
type UseCase struct {
	pool      repo.Pool
	vault     repo.Vault
	published repo.Published
	checker   Checker

	revoker       Revoker
	counterOffers bool
	taxAuthority  string
	taxPrice      model.Amount
}

// New instantiates a ledger use case.
// Required parameters are passed individually, so caller has to
// provision them and whenever they change, caller will notice and fix
// them due to a compilation error.
// Optional parameters are passed as a series of functional options.
func New(
	p repo.Pool, v repo.Vault, pub repo.Published, c Checker,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, vault: v, published: pub, checker: c}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.taxAuthority == "" {
		uc.taxAuthority = model.DefaultTaxAuthority
	}
	if uc.taxPrice == (model.Amount{}) {
		uc.taxPrice = model.TaxPrice
	}
	return uc, nil
}

// pending is a verified transition which is waiting to be recorded.
type pending struct {
	tx       contract.Transition
	consumed []uuid.UUID // vault refs of the tx inputs
	copies   []uuid.UUID // published copies which are consumed by tx
}

// commit verifies p.tx and then consumes its inputs and inserts its
// outputs in one database transaction.
func (uc *UseCase) commit(
	ctx context.Context, c repo.Conn, s model.Session, p pending,
) error {
	if err := uc.checker.Verify(ctx, p.tx, s.Now); err != nil {
		return err
	}
	return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		vq := uc.vault.Tx(tx)
		if len(p.consumed) > 0 {
			if err := vq.Consume(ctx, p.consumed...); err != nil {
				return err
			}
		}
		if len(p.copies) > 0 {
			if err := uc.published.Tx(tx).Consume(ctx, p.copies...); err != nil {
				return err
			}
		}
		if len(p.tx.Outputs) > 0 {
			if _, err := vq.Insert(ctx, p.tx.Outputs...); err != nil {
				return err
			}
		}
		return nil
	})
}

// loadDocument finds the latest version of the id document, expecting
// it to have the D type.
func loadDocument[D model.Document](
	ctx context.Context, q repo.VaultQueryer, id uuid.UUID,
) (repo.Stored[D], error) {
	st, err := q.Document(ctx, id)
	if err != nil {
		return repo.Stored[D]{}, err
	}
	d, ok := st.State.(D)
	if !ok {
		return repo.Stored[D]{}, cerr.NotFound(fmt.Errorf(
			"document %v is a %v", id, st.State.Kind(),
		))
	}
	return repo.Stored[D]{Ref: st.Ref, State: d}, nil
}

func requireParticipant(caller model.Party, doc model.State) error {
	if !model.ContainsParty(doc.Participants(), caller) {
		return cerr.Authorization(pkgerrors.Wrapf(
			ruleerrors.ErrNotParticipant, "%s", caller,
		))
	}
	return nil
}

func requireActionParty(caller, actionParty model.Party) error {
	if caller != actionParty {
		return cerr.Authorization(pkgerrors.Wrapf(
			ruleerrors.ErrNotActionParty,
			"%s may not act while %s has to", caller, actionParty,
		))
	}
	return nil
}

func requireRole(caller, expected model.Party, role string) error {
	if caller != expected {
		return cerr.Authorization(pkgerrors.Wrapf(
			ruleerrors.ErrWrongRole, "%s is not the %s", caller, role,
		))
	}
	return nil
}

// payment selects the payer tokens which cover price. The selected
// tokens are consumed and the payee receives a price token while the
// payer receives the change, if any.
type payment struct {
	inputs  []model.Token
	refs    []uuid.UUID
	outputs []model.Token
}

func (uc *UseCase) pay(
	ctx context.Context, q repo.VaultQueryer,
	payer, payee model.Party, price model.Amount,
) (payment, error) {
	tokens, err := q.Tokens(ctx, payer)
	if err != nil {
		return payment{}, fmt.Errorf("listing tokens: %w", err)
	}
	return selectTokens(tokens, payer, payee, price)
}

// selectTokens picks tokens with the price currency, in their order,
// until their total covers price.
func selectTokens(
	tokens []repo.Stored[model.Token], payer, payee model.Party,
	price model.Amount,
) (payment, error) {
	var p payment
	total := model.Amount{Currency: price.Currency}
	for _, t := range tokens {
		if total.Quantity >= price.Quantity {
			break
		}
		if t.State.Amount.Currency != price.Currency {
			continue
		}
		p.inputs = append(p.inputs, t.State)
		p.refs = append(p.refs, t.Ref)
		total.Quantity += t.State.Amount.Quantity
	}
	if len(p.inputs) == 0 || total.Quantity < price.Quantity {
		return payment{}, cerr.Unprocessable(pkgerrors.Wrapf(
			ruleerrors.ErrNoFunds, "%s has %v while %v is needed",
			payer, total, price,
		))
	}
	p.outputs = []model.Token{{Holder: payee, Amount: price}}
	if change := total.Quantity - price.Quantity; change > 0 {
		p.outputs = append(p.outputs, model.Token{
			Holder: payer,
			Amount: model.Amount{Quantity: change, Currency: price.Currency},
		})
	}
	return p, nil
}

// ownedCopy finds the id published copy and ensures that it is owned
// by owner.
func (uc *UseCase) ownedCopy(
	ctx context.Context, c repo.Conn, owner model.Party, id uuid.UUID,
) (model.Published, error) {
	p, err := uc.published.Conn(c).Find(ctx, id)
	if err != nil {
		return model.Published{}, err
	}
	if p.Owner != owner {
		return model.Published{}, cerr.Authorization(pkgerrors.Wrapf(
			ruleerrors.ErrNotParticipant,
			"copy %v is published by %s", id, p.Owner,
		))
	}
	return p, nil
}

// revokeReplaced revokes the copies of an updated or cancelled
// document. The ledger change is already recorded, so failures are
// logged and not returned.
func (uc *UseCase) revokeReplaced(
	ctx context.Context, s model.Session, old model.Document,
) {
	if uc.revoker == nil {
		return
	}
	if err := uc.revoker.RevokeDocument(ctx, s, old); err != nil {
		log.Error(
			ctx, "failed to revoke copies of a replaced document",
			log.LinearID(old.DocumentID()), log.Err("err", err),
		)
	}
}

func states[S model.State](ss ...S) []model.State {
	out := make([]model.State, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
