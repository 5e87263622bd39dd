// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package publishuc_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/alicer3/car-cordapp/internal/test/memvault"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

var (
	now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tester = model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	owner  = model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
	bob    = model.Party{Organisation: "Bob", Locality: "Bristol", Country: "GB"}
)

type fakeMetrics struct {
	mu          sync.Mutex
	published   map[string]int
	revocations map[string]int
}

func (fm *fakeMetrics) IncPublished(mode string, reused bool) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if reused {
		mode += "/reused"
	}
	fm.published[mode]++
}

func (fm *fakeMetrics) IncRevocation(outcome string) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.revocations[outcome]++
}

type fakePeers struct {
	mu    sync.Mutex
	asked []model.Party
	err   error
}

func (fp *fakePeers) Revoke(
	_ context.Context, _ model.Session, peer model.Party, _ model.Document,
) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.asked = append(fp.asked, peer)
	return fp.err
}

type PublishTestSuite struct {
	suite.Suite

	ctx     context.Context
	store   *memvault.Store
	peers   *fakePeers
	metrics *fakeMetrics
	uc      *publishuc.UseCase
	mot     model.MOT
}

func TestPublishTestSuite(t *testing.T) {
	suite.Run(t, new(PublishTestSuite))
}

func (pts *PublishTestSuite) SetupTest() {
	r := pts.Require()
	pts.ctx = context.Background()
	pts.store = memvault.New()
	pts.peers = &fakePeers{}
	pts.metrics = &fakeMetrics{
		published:   map[string]int{},
		revocations: map[string]int{},
	}
	v, err := contract.New()
	r.NoError(err)
	checker, err := verifyuc.New(v)
	r.NoError(err)
	pts.uc, err = publishuc.New(
		pts.store.Pool(), pts.store.Vault(), pts.store.Published(), checker,
		publishuc.WithPeers(pts.peers),
		publishuc.WithMetrics(pts.metrics),
		publishuc.WithRevocationTimeout(time.Second),
	)
	r.NoError(err)
	pts.mot = model.MOT{
		TestDate:   now.Add(-time.Hour),
		ExpiryDate: now.AddDate(1, 0, 0),
		Location:   "Leeds",
		Tester:     tester,
		Vehicle:    model.Vehicle{ID: 7, RegistrationNo: "AB12 CDE"},
		Owner:      owner,
		Result:     true,
		LinearID:   uuid.New(),
	}
	pts.insert(pts.mot)
}

func (pts *PublishTestSuite) insert(states ...model.State) {
	_, err := pts.store.Vault().Tx(nil).Insert(pts.ctx, states...)
	pts.Require().NoError(err)
}

func as(caller model.Party, cosigners ...model.Party) model.Session {
	return model.Session{Caller: caller, Cosigners: cosigners, Now: now}
}

func (pts *PublishTestSuite) TestReuseIsIdempotent() {
	r := pts.Require()
	first, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeReuse,
	)
	r.NoError(err)
	second, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeReuse,
	)
	r.NoError(err)
	r.Equal(first.ID, second.ID)
	r.True(second.Wraps(pts.mot))
	r.Equal(1, pts.metrics.published["REUSE"])
	r.Equal(1, pts.metrics.published["REUSE/reused"])

	other, err := pts.uc.Publish(
		pts.ctx, as(tester, owner), pts.mot.LinearID, model.PublishModeReuse,
	)
	r.NoError(err)
	r.NotEqual(first.ID, other.ID, "copies of distinct owners are distinct")
}

func (pts *PublishTestSuite) TestNewIssueIsDistinct() {
	r := pts.Require()
	first, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	second, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	r.NotEqual(first.ID, second.ID)
	copies, err := pts.uc.Copies(pts.ctx, as(owner), pts.mot.LinearID)
	r.NoError(err)
	r.Len(copies, 2)
}

func (pts *PublishTestSuite) TestPublishErrors() {
	r := pts.Require()
	_, err := pts.uc.Publish(
		pts.ctx, as(bob), pts.mot.LinearID, model.PublishModeReuse,
	)
	r.ErrorIs(err, ruleerrors.ErrNotParticipant)
	var ce *cerr.Error
	r.ErrorAs(err, &ce)
	r.Equal(http.StatusForbidden, ce.HTTPStatusCode)

	_, err = pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeInvalid,
	)
	r.ErrorIs(err, model.ErrUnknownPublishMode)

	_, err = pts.uc.Publish(
		pts.ctx, as(owner, tester), uuid.New(), model.PublishModeReuse,
	)
	r.ErrorAs(err, &ce)
	r.Equal(http.StatusNotFound, ce.HTTPStatusCode)
}

func (pts *PublishTestSuite) TestPublishNeedsAllParticipants() {
	r := pts.Require()
	_, err := pts.uc.Publish(
		pts.ctx, as(owner), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.ErrorIs(err, ruleerrors.ErrMissingSigner)
	var ce *cerr.Error
	r.ErrorAs(err, &ce)
	r.Equal(http.StatusForbidden, ce.HTTPStatusCode)

	_, err = pts.uc.Publish(
		pts.ctx, as(owner, bob), pts.mot.LinearID, model.PublishModeReuse,
	)
	r.ErrorIs(err, ruleerrors.ErrMissingSigner)
	copies, err := pts.uc.Copies(pts.ctx, as(owner), pts.mot.LinearID)
	r.NoError(err)
	r.Empty(copies)
	r.Empty(pts.metrics.published)
}

func (pts *PublishTestSuite) TestSelfRevokeIsScoped() {
	r := pts.Require()
	mine, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	theirs, err := pts.uc.Publish(
		pts.ctx, as(tester, owner), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	older := pts.mot
	older.Result = false
	n, err := pts.uc.SelfRevoke(pts.ctx, as(owner), older)
	r.NoError(err)
	r.Zero(n, "copies of other versions are kept")

	n, err = pts.uc.SelfRevoke(pts.ctx, as(owner), pts.mot)
	r.NoError(err)
	r.Equal(1, n)
	r.True(pts.store.CopyConsumed(mine.ID))
	r.False(pts.store.CopyConsumed(theirs.ID))

	n, err = pts.uc.SelfRevoke(pts.ctx, as(owner), pts.mot)
	r.NoError(err)
	r.Zero(n, "revocation without copies is no-op")
}

func (pts *PublishTestSuite) TestRevokeScattersToParticipants() {
	r := pts.Require()
	mine, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	r.NoError(pts.uc.Revoke(pts.ctx, as(owner), pts.mot.LinearID))
	r.Equal([]model.Party{tester}, pts.peers.asked)
	r.True(pts.store.CopyConsumed(mine.ID))
	r.Equal(2, pts.metrics.revocations["revoked"])

	r.ErrorIs(
		pts.uc.Revoke(pts.ctx, as(bob), pts.mot.LinearID),
		ruleerrors.ErrNotParticipant,
	)
}

func (pts *PublishTestSuite) TestRevokeReportsPeerFailures() {
	r := pts.Require()
	pts.peers.err = errors.New("peer is unreachable")
	mine, err := pts.uc.Publish(
		pts.ctx, as(owner, tester), pts.mot.LinearID, model.PublishModeNewIssue,
	)
	r.NoError(err)
	err = pts.uc.RevokeDocument(pts.ctx, as(owner), pts.mot)
	r.ErrorIs(err, pts.peers.err)
	r.True(pts.store.CopyConsumed(mine.ID), "own copies are revoked anyway")
	r.Equal(1, pts.metrics.revocations["failed"])
	r.Equal(1, pts.metrics.revocations["revoked"])
}

func (pts *PublishTestSuite) TestOptions() {
	r := pts.Require()
	_, err := publishuc.New(
		pts.store.Pool(), pts.store.Vault(), pts.store.Published(), nil,
		publishuc.WithRevocationTimeout(0),
	)
	r.Error(err)
	_, err = publishuc.New(
		pts.store.Pool(), pts.store.Vault(), pts.store.Published(), nil,
		publishuc.WithPeers(pts.peers), publishuc.WithPeers(pts.peers),
	)
	r.Error(err)
}
