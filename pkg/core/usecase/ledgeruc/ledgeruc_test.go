// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/alicer3/car-cordapp/internal/test/memvault"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

var (
	now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	day = 24 * time.Hour

	tester  = model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	owner   = model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
	insurer = model.Party{Organisation: "Insurer", Locality: "York", Country: "GB"}
	lta     = model.Party{Organisation: "LTA", Locality: "London", Country: "GB"}
	bob     = model.Party{Organisation: "Bob", Locality: "Bristol", Country: "GB"}

	vehicle = model.Vehicle{
		ID:             7,
		RegistrationNo: "AB12 CDE",
		Country:        "GB",
		Model:          "Civic",
		Category:       "M1",
		Mileage:        42000,
	}
)

func as(caller model.Party, cosigners ...model.Party) model.Session {
	return model.Session{Caller: caller, Cosigners: cosigners, Now: now}
}

// localPeers revokes copies of other parties in the same vault, as if
// each one of them had received a revocation request.
type localPeers struct {
	uc *publishuc.UseCase
}

func (lp *localPeers) Revoke(
	ctx context.Context, s model.Session, peer model.Party,
	doc model.Document,
) error {
	_, err := lp.uc.SelfRevoke(
		ctx, model.Session{Caller: peer, Now: s.Now}, doc,
	)
	return err
}

type LedgerTestSuite struct {
	suite.Suite

	ctx       context.Context
	store     *memvault.Store
	ledger    *ledgeruc.UseCase
	publisher *publishuc.UseCase
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (lts *LedgerTestSuite) SetupTest() {
	lts.ctx = context.Background()
	lts.store = memvault.New()
	lts.ledger, lts.publisher = lts.newUseCases()
}

func (lts *LedgerTestSuite) newUseCases(
	opts ...ledgeruc.Option,
) (*ledgeruc.UseCase, *publishuc.UseCase) {
	r := lts.Require()
	v, err := contract.New()
	r.NoError(err)
	checker, err := verifyuc.New(v)
	r.NoError(err)
	peers := &localPeers{}
	pub, err := publishuc.New(
		lts.store.Pool(), lts.store.Vault(), lts.store.Published(), checker,
		publishuc.WithPeers(peers),
	)
	r.NoError(err)
	peers.uc = pub
	opts = append(opts, ledgeruc.WithRevoker(pub))
	l, err := ledgeruc.New(
		lts.store.Pool(), lts.store.Vault(), lts.store.Published(), checker,
		opts...,
	)
	r.NoError(err)
	return l, pub
}

func (lts *LedgerTestSuite) requireStatus(err error, code int, rule error) {
	lts.Require().Error(err)
	var ce *cerr.Error
	lts.Require().ErrorAs(err, &ce)
	lts.Require().Equal(code, ce.HTTPStatusCode, "err: %v", err)
	if rule != nil {
		lts.Require().ErrorIs(err, rule)
	}
}

func (lts *LedgerTestSuite) deposit(holder model.Party, pounds int64) {
	_, err := lts.ledger.Deposit(lts.ctx, holder, model.GBP(pounds))
	lts.Require().NoError(err, "depositing for %s", holder)
}

func (lts *LedgerTestSuite) balance(holder model.Party) model.Amount {
	b, err := lts.ledger.Balance(lts.ctx, holder)
	lts.Require().NoError(err, "balance of %s", holder)
	return b
}

// agreedProposal drafts a proposal by the tester and lets the owner
// agree with it.
func (lts *LedgerTestSuite) agreedProposal() model.Proposal {
	r := lts.Require()
	p, err := lts.ledger.DraftProposal(lts.ctx, as(tester), model.Proposal{
		Tester:      tester,
		Owner:       owner,
		Vehicle:     vehicle,
		Price:       model.GBP(100),
		ActionParty: tester,
	})
	r.NoError(err, "draft")
	r.Equal(model.StatusDraft, p.Status)
	p, err = lts.ledger.DistributeProposal(
		lts.ctx, as(tester, owner), p.LinearID, model.GBP(100),
	)
	r.NoError(err, "distribute")
	r.Equal(owner, p.ActionParty)
	p, err = lts.ledger.AgreeProposal(lts.ctx, as(owner, tester), p.LinearID)
	r.NoError(err, "agree")
	r.Equal(model.StatusAgreed, p.Status)
	return p
}

func (lts *LedgerTestSuite) issuedMOT() model.MOT {
	r := lts.Require()
	p := lts.agreedProposal()
	p, err := lts.ledger.PayProposal(lts.ctx, as(owner, tester), p.LinearID)
	r.NoError(err, "pay")
	r.Equal(model.StatusPaid, p.Status)
	m, err := lts.ledger.IssueMOT(
		lts.ctx, as(tester), p.LinearID, "Leeds", ledgeruc.MOTResult{
			TestDate:   now.Add(-time.Hour),
			ExpiryDate: now.AddDate(1, 0, 0),
			Result:     true,
		},
	)
	r.NoError(err, "issue mot")
	return m
}

func (lts *LedgerTestSuite) agreedInsurance() model.Insurance {
	r := lts.Require()
	terms := ledgeruc.InsuranceTerms{
		Price:         model.GBP(300),
		Coverage:      "comprehensive",
		EffectiveDate: now.Add(-day),
		ExpiryDate:    now.Add(180 * day),
	}
	i, err := lts.ledger.DraftInsurance(lts.ctx, as(insurer), model.Insurance{
		Insurer:       insurer,
		Insured:       owner,
		Vehicle:       vehicle,
		Price:         terms.Price,
		Coverage:      terms.Coverage,
		EffectiveDate: terms.EffectiveDate,
		ExpiryDate:    terms.ExpiryDate,
		ActionParty:   insurer,
	})
	r.NoError(err, "draft insurance")
	i, err = lts.ledger.DistributeInsurance(
		lts.ctx, as(insurer, owner), i.LinearID, terms,
	)
	r.NoError(err, "distribute insurance")
	i, err = lts.ledger.AgreeInsurance(lts.ctx, as(owner, insurer), i.LinearID)
	r.NoError(err, "agree insurance")
	return i
}

func (lts *LedgerTestSuite) TestFullLifecycle() {
	r := lts.Require()
	lts.deposit(owner, 2000)
	m := lts.issuedMOT()
	r.Equal(model.GBP(1900), lts.balance(owner))
	r.Equal(model.GBP(100), lts.balance(tester))

	i := lts.agreedInsurance()
	motCopy, err := lts.publisher.Publish(
		lts.ctx, as(owner, tester), m.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err, "publish mot for insurer")
	i, err = lts.ledger.IssueInsurance(
		lts.ctx, as(owner, insurer), i.LinearID, motCopy.ID,
	)
	r.NoError(err, "issue insurance")
	r.Equal(model.StatusIssued, i.Status)
	r.True(lts.store.CopyConsumed(motCopy.ID), "mot copy must be consumed")

	motCopy, err = lts.publisher.Publish(
		lts.ctx, as(owner, tester), m.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err, "publish mot for authority")
	insCopy, err := lts.publisher.Publish(
		lts.ctx, as(owner, insurer), i.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err, "publish insurance for authority")
	t, err := lts.ledger.IssueTax(lts.ctx, as(owner, lta), ledgeruc.TaxRequest{
		Authority:     lta,
		Vehicle:       vehicle,
		EffectiveDate: now,
		ExpiryDate:    now.Add(90 * day),
		MOTCopy:       motCopy.ID,
		InsuranceCopy: insCopy.ID,
	})
	r.NoError(err, "issue tax")
	r.Equal(owner, t.Owner)

	r.Equal(model.GBP(600), lts.balance(owner))
	r.Equal(model.GBP(300), lts.balance(insurer))
	r.Equal(model.GBP(1000), lts.balance(lta))

	found, err := lts.ledger.FindMOTForVehicle(lts.ctx, as(owner), vehicle)
	r.NoError(err)
	r.Equal(m.LinearID, found.LinearID)
	fi, err := lts.ledger.FindInsuranceForVehicle(lts.ctx, as(owner), vehicle)
	r.NoError(err)
	r.Equal(i.LinearID, fi.LinearID)
	taxes, err := lts.ledger.Documents(lts.ctx, as(lta), model.DocumentKindTax)
	r.NoError(err)
	r.Len(taxes, 1)
}

func (lts *LedgerTestSuite) TestGates() {
	r := lts.Require()
	p := lts.agreedProposal()

	_, err := lts.ledger.PayProposal(lts.ctx, as(tester, owner), p.LinearID)
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrWrongRole)

	_, err = lts.ledger.UpdateProposal(
		lts.ctx, as(bob), p.LinearID, model.GBP(90),
	)
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrNotParticipant)

	_, err = lts.ledger.Document(lts.ctx, as(bob), p.LinearID)
	lts.requireStatus(err, http.StatusNotFound, nil)

	d, err := lts.ledger.Document(lts.ctx, as(owner), p.LinearID)
	r.NoError(err)
	r.Equal(model.DocumentKindProposal, d.Kind())

	_, err = lts.ledger.DraftProposal(lts.ctx, as(owner), model.Proposal{
		Tester:      tester,
		Owner:       owner,
		Vehicle:     vehicle,
		Price:       model.GBP(100),
		ActionParty: tester,
	})
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrNotActionParty)

	_, err = lts.ledger.IssueTax(lts.ctx, as(owner, bob), ledgeruc.TaxRequest{
		Authority:     bob,
		Vehicle:       vehicle,
		EffectiveDate: now,
		ExpiryDate:    now.Add(day),
	})
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrNotTaxAuthority)

	_, err = lts.ledger.Deposit(lts.ctx, owner, model.GBP(0))
	lts.requireStatus(err, http.StatusBadRequest, nil)
}

func (lts *LedgerTestSuite) TestContractViolationsAreClassified() {
	p := lts.agreedProposal()

	// the tester has not cosigned the update
	_, err := lts.ledger.UpdateProposal(
		lts.ctx, as(owner), p.LinearID, model.GBP(90),
	)
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrMissingSigner)

	// agreed proposals may not be agreed again
	_, err = lts.ledger.AgreeProposal(lts.ctx, as(owner, tester), p.LinearID)
	lts.requireStatus(
		err, http.StatusUnprocessableEntity, ruleerrors.ErrInputStatus,
	)
}

func (lts *LedgerTestSuite) TestPaymentWithoutFundsChangesNothing() {
	r := lts.Require()
	lts.deposit(owner, 50)
	p := lts.agreedProposal()

	_, err := lts.ledger.PayProposal(lts.ctx, as(owner, tester), p.LinearID)
	lts.requireStatus(err, http.StatusUnprocessableEntity, ruleerrors.ErrNoFunds)

	d, err := lts.ledger.Document(lts.ctx, as(owner), p.LinearID)
	r.NoError(err)
	r.Equal(model.StatusAgreed, d.(model.Proposal).Status)
	r.Equal(model.GBP(50), lts.balance(owner))
}

func (lts *LedgerTestSuite) TestCounterOfferPolicy() {
	lts.ledger, lts.publisher = lts.newUseCases(
		ledgeruc.WithCounterOfferPolicy(true),
	)
	r := lts.Require()
	p := lts.agreedProposal()

	_, err := lts.ledger.UpdateProposal(
		lts.ctx, as(owner, tester), p.LinearID, model.GBP(120),
	)
	lts.requireStatus(
		err, http.StatusForbidden, ruleerrors.ErrCounterOfferDirection,
	)
	_, err = lts.ledger.UpdateProposal(
		lts.ctx, as(tester, owner), p.LinearID, model.GBP(80),
	)
	lts.requireStatus(
		err, http.StatusForbidden, ruleerrors.ErrCounterOfferDirection,
	)

	p, err = lts.ledger.UpdateProposal(
		lts.ctx, as(owner, tester), p.LinearID, model.GBP(80),
	)
	r.NoError(err, "owner decreases the price")
	p, err = lts.ledger.UpdateProposal(
		lts.ctx, as(tester, owner), p.LinearID, model.GBP(90),
	)
	r.NoError(err, "tester increases the price")
	r.Equal(model.GBP(90), p.Price)
}

func (lts *LedgerTestSuite) TestUpdatedMOTCopiesAreRevoked() {
	r := lts.Require()
	lts.deposit(owner, 100)
	m := lts.issuedMOT()
	cp, err := lts.publisher.Publish(
		lts.ctx, as(owner, tester), m.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)

	updated, err := lts.ledger.UpdateMOT(
		lts.ctx, as(tester), m.LinearID, ledgeruc.MOTResult{
			TestDate:   m.TestDate,
			ExpiryDate: m.ExpiryDate.Add(day),
			Result:     true,
		},
	)
	r.NoError(err)
	r.Equal(m.LinearID, updated.LinearID)
	r.True(lts.store.CopyConsumed(cp.ID), "stale copy must be revoked")

	_, err = lts.ledger.UpdateMOT(
		lts.ctx, as(owner), m.LinearID, ledgeruc.MOTResult{},
	)
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrWrongRole)

	r.NoError(lts.ledger.CancelMOT(lts.ctx, as(tester), m.LinearID))
	_, err = lts.ledger.Document(lts.ctx, as(owner), m.LinearID)
	lts.requireStatus(err, http.StatusNotFound, nil)
}

func (lts *LedgerTestSuite) TestIssueInsuranceWithForeignCopy() {
	r := lts.Require()
	lts.deposit(owner, 1000)
	m := lts.issuedMOT()
	i := lts.agreedInsurance()
	cp, err := lts.publisher.Publish(
		lts.ctx, as(tester, owner), m.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)

	_, err = lts.ledger.IssueInsurance(
		lts.ctx, as(owner, insurer), i.LinearID, cp.ID,
	)
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrNotParticipant)

	_, err = lts.ledger.IssueInsurance(
		lts.ctx, as(owner, insurer), i.LinearID, uuid.New(),
	)
	lts.requireStatus(err, http.StatusNotFound, nil)
	r.False(errors.Is(err, ruleerrors.ErrNotParticipant))
}

func (lts *LedgerTestSuite) TestTaxLifecycle() {
	r := lts.Require()
	lts.deposit(owner, 2000)
	m := lts.issuedMOT()
	i := lts.agreedInsurance()
	cp, err := lts.publisher.Publish(
		lts.ctx, as(owner, tester), m.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	i, err = lts.ledger.IssueInsurance(
		lts.ctx, as(owner, insurer), i.LinearID, cp.ID,
	)
	r.NoError(err)
	mc, err := lts.publisher.Publish(
		lts.ctx, as(owner, tester), m.LinearID, model.PublishModeReuse,
	)
	r.NoError(err)
	ic, err := lts.publisher.Publish(
		lts.ctx, as(owner, insurer), i.LinearID, model.PublishModeReuse,
	)
	r.NoError(err)
	t, err := lts.ledger.IssueTax(lts.ctx, as(owner, lta), ledgeruc.TaxRequest{
		Authority:     lta,
		Vehicle:       vehicle,
		EffectiveDate: now.Add(day),
		ExpiryDate:    now.Add(30 * day),
		MOTCopy:       mc.ID,
		InsuranceCopy: ic.ID,
	})
	r.NoError(err)

	_, err = lts.ledger.UpdateTax(lts.ctx, as(owner), t.LinearID, ledgeruc.TaxDates{
		EffectiveDate: now.Add(day),
		ExpiryDate:    now.Add(60 * day),
	})
	lts.requireStatus(err, http.StatusForbidden, ruleerrors.ErrWrongRole)
	t, err = lts.ledger.UpdateTax(lts.ctx, as(lta), t.LinearID, ledgeruc.TaxDates{
		EffectiveDate: now.Add(day),
		ExpiryDate:    now.Add(60 * day),
	})
	r.NoError(err)
	r.Equal(now.Add(60*day), t.ExpiryDate)
	r.NoError(lts.ledger.CancelTax(lts.ctx, as(lta), t.LinearID))
}
