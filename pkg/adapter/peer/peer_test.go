// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package peer_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/peer"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
)

var _ publishuc.Peers = (*peer.Router)(nil)

var (
	tester = model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	owner  = model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}

	now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	by  = model.Session{Caller: owner, Now: now}

	mot = model.MOT{
		TestDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Location:   "Leeds",
		Tester:     tester,
		Owner:      owner,
		Vehicle: model.Vehicle{
			ID: 1, RegistrationNo: "AB12 CDE", Country: "GB",
			Model: "Civic", Category: "M1", Mileage: 1,
		},
		Result:   true,
		LinearID: uuid.MustParse("00000000-0000-0000-0000-000000000002"),
	}
)

type localRevoker struct {
	callers []model.Party
	times   []time.Time
	err     error
}

func (l *localRevoker) SelfRevoke(
	_ context.Context, s model.Session, _ model.Document,
) (int, error) {
	l.callers = append(l.callers, s.Caller)
	l.times = append(l.times, s.Now)
	return 1, l.err
}

func TestRemoteRevoke(t *testing.T) {
	var got model.Document
	var party string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, peer.SelfRevokePath, r.URL.Path)
			party = r.Header.Get(peer.PartyHeader)
			b, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			got, err = codec.UnmarshalDocument(b)
			assert.NoError(t, err)
			_, _ = w.Write([]byte(`{"revoked":1}`))
		},
	))
	defer srv.Close()

	local := &localRevoker{}
	r := peer.New(map[model.Party]string{owner: srv.URL + "/"}, time.Second)
	r.SetLocal(local)
	require.NoError(t, r.Revoke(context.Background(), by, owner, mot))
	assert.Equal(t, owner.String(), party)
	assert.Equal(t, model.Document(mot), got)
	assert.Empty(t, local.callers, "remote parties are not revoked locally")
}

func TestRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail":"not a participant"}`))
		},
	))
	defer srv.Close()
	r := peer.New(map[model.Party]string{owner: srv.URL}, time.Second)
	err := r.Revoke(context.Background(), by, owner, mot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "not a participant")
}

func TestLocalRevoke(t *testing.T) {
	r := peer.New(nil, time.Second)
	err := r.Revoke(context.Background(), by, tester, mot)
	assert.Error(t, err, "no local revoker")

	local := &localRevoker{}
	r.SetLocal(local)
	require.NoError(t, r.Revoke(context.Background(), by, tester, mot))
	assert.Equal(t, []model.Party{tester}, local.callers)
	assert.Equal(t, []time.Time{now}, local.times, "time of the initiator")

	local.err = errors.New("boom")
	err = r.Revoke(context.Background(), by, tester, mot)
	assert.ErrorIs(t, err, local.err)
}
