// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/core/model"
)

func TestParseAmount(t *testing.T) {
	for s, exp := range map[string]model.Amount{
		"100 GBP":     model.GBP(100),
		"99.5 GBP":    {Quantity: 9950, Currency: "GBP"},
		" 0.01  EUR ": {Quantity: 1, Currency: "EUR"},
		"-3 GBP":      {Quantity: -300, Currency: "GBP"},
	} {
		a, err := model.ParseAmount(s)
		require.NoError(t, err, s)
		assert.Equal(t, exp, a, s)
	}
	for _, s := range []string{
		"", "100", "ten GBP", "1.005 GBP", "10 gbp", "10 POUND", "1 G B P",
	} {
		_, err := model.ParseAmount(s)
		assert.ErrorIs(t, err, model.ErrMalformedAmount, s)
	}
}

func TestAmountArithmetic(t *testing.T) {
	a, err := model.Amount{}.Plus(model.GBP(5))
	require.NoError(t, err)
	assert.Equal(t, model.GBP(5), a, "zero is the identity")
	a, err = model.GBP(150).Minus(model.GBP(90))
	require.NoError(t, err)
	assert.Equal(t, "60.00 GBP", a.String())
	assert.True(t, a.IsPositive())
	a, err = model.GBP(1).Minus(model.GBP(2))
	require.NoError(t, err)
	assert.True(t, a.IsNegative())
	_, err = model.GBP(1).Plus(model.Amount{Quantity: 1, Currency: "EUR"})
	assert.ErrorIs(t, err, model.ErrCurrencyMismatch)

	sum, err := model.SumTokens(nil)
	require.NoError(t, err)
	assert.Equal(t, model.Amount{}, sum)
	_, err = model.SumTokens([]model.Token{
		{Amount: model.GBP(1)},
		{Amount: model.Amount{Quantity: 1, Currency: "EUR"}},
	})
	assert.ErrorIs(t, err, model.ErrCurrencyMismatch)
}

func TestParseParty(t *testing.T) {
	exp := model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	for _, s := range []string{
		"O=Garage,L=Leeds,C=GB",
		"C=GB, L=Leeds, O=Garage",
	} {
		p, err := model.ParseParty(s)
		require.NoError(t, err, s)
		assert.Equal(t, exp, p, s)
	}
	assert.Equal(t, "O=Garage,L=Leeds,C=GB", exp.String())
	for _, s := range []string{
		"", "Garage", "O=Garage,L=Leeds", "O=Garage,L=Leeds,C=GB,O=X",
		"O=Garage,L=Leeds,C=", "O=Garage,L=Leeds,C=GB,OU=IT",
	} {
		_, err := model.ParseParty(s)
		assert.ErrorIs(t, err, model.ErrMalformedParty, s)
	}
	_, err := model.Party{}.MarshalText()
	assert.ErrorIs(t, err, model.ErrMalformedParty)
	assert.True(t, model.ContainsParty([]model.Party{{}, exp}, exp))
	assert.False(t, model.ContainsParty(nil, exp))
}

func TestStatusText(t *testing.T) {
	for _, s := range []model.Status{
		model.StatusDraft, model.StatusPending, model.StatusRejected,
		model.StatusAgreed, model.StatusPaid, model.StatusIssued,
	} {
		b, err := s.MarshalText()
		require.NoError(t, err)
		var got model.Status
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}
	st, err := model.ParseStatus("agreed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAgreed, st)
	_, err = model.ParseStatus("SIGNED")
	assert.ErrorIs(t, err, model.ErrUnknownStatus)
	_, err = model.StatusInvalid.MarshalText()
	assert.Error(t, err)
	assert.Panics(t, func() { _ = model.StatusInvalid.String() })
}

func TestPublishMode(t *testing.T) {
	m, err := model.ParsePublishMode("NEWISSUE")
	require.NoError(t, err)
	assert.Equal(t, model.PublishModeNewIssue, m)
	assert.Equal(t, "REUSE", model.PublishModeReuse.String())
	_, err = model.ParsePublishMode("reuse")
	assert.ErrorIs(t, err, model.ErrUnknownPublishMode)
}

func TestSemVer(t *testing.T) {
	var v model.SemVer
	require.NoError(t, v.UnmarshalText([]byte("1.2")))
	assert.Equal(t, model.SemVer{1, 2, 0}, v)
	require.NoError(t, v.UnmarshalText([]byte("3.0.7")))
	assert.Equal(t, "3.0.7", v.String())
	for _, s := range []string{"", "1.2.3.4", "1.-2", "v1", "1..2"} {
		assert.Error(t, v.UnmarshalText([]byte(s)), s)
	}
	assert.Equal(t, model.SemVer{3, 0, 7}, v, "kept on errors")
}

func TestVehicleIsComplete(t *testing.T) {
	v := model.Vehicle{
		ID: 1, RegistrationNo: "AB12 CDE", Country: "GB",
		Model: "Civic", Category: "M1", Mileage: 42000,
	}
	assert.True(t, v.IsComplete())
	for name, f := range map[string]func(*model.Vehicle){
		"id":       func(v *model.Vehicle) { v.ID = 0 },
		"reg":      func(v *model.Vehicle) { v.RegistrationNo = "" },
		"country":  func(v *model.Vehicle) { v.Country = "" },
		"model":    func(v *model.Vehicle) { v.Model = "" },
		"category": func(v *model.Vehicle) { v.Category = "" },
		"mileage":  func(v *model.Vehicle) { v.Mileage = -1 },
	} {
		w := v
		f(&w)
		assert.False(t, w.IsComplete(), name)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	d := model.StartOfDay(time.Date(2024, 5, 2, 1, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), d)
}
