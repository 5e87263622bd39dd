// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"github.com/google/uuid"
)

// Proposal is an offer for an MOT test which is negotiated between a
// tester (garage) and a vehicle owner. It is drafted by one of them,
// goes back and forth as PENDING counter-offers until the action-party
// agrees or rejects it, and after being paid it is consumed when the
// MOT is issued.
type Proposal struct {
	Tester      Party     `json:"tester"`
	Owner       Party     `json:"owner"`
	Vehicle     Vehicle   `json:"vehicle"`
	Price       Amount    `json:"price"`
	Status      Status    `json:"status"`
	ActionParty Party     `json:"action_party"` // who must act next
	LinearID    uuid.UUID `json:"linear_id"`
}

// Participants returns the tester and owner.
func (p Proposal) Participants() []Party {
	return []Party{p.Tester, p.Owner}
}

// DocumentID returns the proposal linear id.
func (p Proposal) DocumentID() uuid.UUID {
	return p.LinearID
}

// Kind returns DocumentKindProposal.
func (p Proposal) Kind() DocumentKind {
	return DocumentKindProposal
}

// Counterparty returns the participant other than party. The ok flag
// is false if party is not a participant of p.
func (p Proposal) Counterparty(party Party) (other Party, ok bool) {
	return counterparty(p.Tester, p.Owner, party)
}

func counterparty(a, b, party Party) (Party, bool) {
	switch party {
	case a:
		return b, true
	case b:
		return a, true
	default:
		return Party{}, false
	}
}
