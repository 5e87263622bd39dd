// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// MOT is a roadworthiness test certificate. It is issued by a tester
// by consuming a paid Proposal, and may be updated or cancelled by
// that tester afterwards.
type MOT struct {
	TestDate   time.Time `json:"test_date"`
	ExpiryDate time.Time `json:"expiry_date"`
	Location   string    `json:"location"` // where the test took place
	Tester     Party     `json:"tester"`
	Vehicle    Vehicle   `json:"vehicle"`
	Owner      Party     `json:"owner"`
	Result     bool      `json:"result"` // true means passed
	LinearID   uuid.UUID `json:"linear_id"`
}

// Participants returns the tester and owner.
func (m MOT) Participants() []Party {
	return []Party{m.Tester, m.Owner}
}

// DocumentID returns the MOT linear id.
func (m MOT) DocumentID() uuid.UUID {
	return m.LinearID
}

// Kind returns DocumentKindMOT.
func (m MOT) Kind() DocumentKind {
	return DocumentKindMOT
}

// Equal reports whether m and o have equal fields.
func (m MOT) Equal(o MOT) bool {
	return m.TestDate.Equal(o.TestDate) &&
		m.ExpiryDate.Equal(o.ExpiryDate) &&
		m.Location == o.Location &&
		m.Tester == o.Tester &&
		m.Vehicle == o.Vehicle &&
		m.Owner == o.Owner &&
		m.Result == o.Result &&
		m.LinearID == o.LinearID
}
