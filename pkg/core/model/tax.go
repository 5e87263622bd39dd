// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// TaxPrice is the fixed price of a road tax record.
var TaxPrice = GBP(1000)

// DefaultTaxAuthority is the organisation name of the only party which
// may issue road tax records, unless configured otherwise.
const DefaultTaxAuthority = "LTA"

// Tax is a road tax record. It has no negotiation phase and is created
// in its final form when the owner pays TaxPrice to the authority and
// presents a valid MOT and an issued Insurance of the same vehicle.
type Tax struct {
	Authority     Party     `json:"authority"`
	Vehicle       Vehicle   `json:"vehicle"`
	Owner         Party     `json:"owner"`
	EffectiveDate time.Time `json:"effective_date"`
	ExpiryDate    time.Time `json:"expiry_date"`
	LinearID      uuid.UUID `json:"linear_id"`
}

// Participants returns the authority and owner.
func (t Tax) Participants() []Party {
	return []Party{t.Authority, t.Owner}
}

// DocumentID returns the tax record linear id.
func (t Tax) DocumentID() uuid.UUID {
	return t.LinearID
}

// Kind returns DocumentKindTax.
func (t Tax) Kind() DocumentKind {
	return DocumentKindTax
}

// Equal reports whether t and o have equal fields.
func (t Tax) Equal(o Tax) bool {
	return t.Authority == o.Authority &&
		t.Vehicle == o.Vehicle &&
		t.Owner == o.Owner &&
		t.EffectiveDate.Equal(o.EffectiveDate) &&
		t.ExpiryDate.Equal(o.ExpiryDate) &&
		t.LinearID == o.LinearID
}
