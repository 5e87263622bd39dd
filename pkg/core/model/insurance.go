// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// Insurance is a vehicle insurance policy which is negotiated between
// an insurer and the insured vehicle owner, just like a Proposal.
// An AGREED policy becomes ISSUED when its price is paid and a valid
// MOT of the same vehicle is presented.
type Insurance struct {
	Insurer       Party     `json:"insurer"`
	Insured       Party     `json:"insured"`
	Vehicle       Vehicle   `json:"vehicle"`
	Price         Amount    `json:"price"`
	Coverage      string    `json:"coverage"`
	EffectiveDate time.Time `json:"effective_date"`
	ExpiryDate    time.Time `json:"expiry_date"`
	ActionParty   Party     `json:"action_party"`
	Status        Status    `json:"status"`
	LinearID      uuid.UUID `json:"linear_id"`
}

// Participants returns the insurer and insured.
func (i Insurance) Participants() []Party {
	return []Party{i.Insurer, i.Insured}
}

// DocumentID returns the policy linear id.
func (i Insurance) DocumentID() uuid.UUID {
	return i.LinearID
}

// Kind returns DocumentKindInsurance.
func (i Insurance) Kind() DocumentKind {
	return DocumentKindInsurance
}

// Counterparty returns the participant other than party. The ok flag
// is false if party is not a participant of i.
func (i Insurance) Counterparty(party Party) (other Party, ok bool) {
	return counterparty(i.Insurer, i.Insured, party)
}

// Equal reports whether i and o have equal fields.
func (i Insurance) Equal(o Insurance) bool {
	return i.Insurer == o.Insurer &&
		i.Insured == o.Insured &&
		i.Vehicle == o.Vehicle &&
		i.Price == o.Price &&
		i.Coverage == o.Coverage &&
		i.EffectiveDate.Equal(o.EffectiveDate) &&
		i.ExpiryDate.Equal(o.ExpiryDate) &&
		i.ActionParty == o.ActionParty &&
		i.Status == o.Status &&
		i.LinearID == o.LinearID
}
