// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
//
// The certification documents (Proposal, MOT, Insurance, and Tax) are
// immutable values. A transition never mutates a document, but consumes
// its current version and produces a new version having the same
// LinearID. By the way, it is acceptable to annotate structs in this
// package with multiple frameworks dependent tags (e.g., json tags)
// since adding more tags does not complicate definition of a struct,
// but can prevent unnecessary structs duplication in the adapters.
package model

// Vehicle models a registered vehicle which anchors all certification
// documents. Two documents refer to the same vehicle if and only if
// their Vehicle values are equal (using the == operator).
type Vehicle struct {
	ID             int64  `json:"id"`
	RegistrationNo string `json:"registration_no"`
	Country        string `json:"country"` // country of registration
	Model          string `json:"model"`
	Category       string `json:"category"`
	Mileage        int    `json:"mileage"`
}

// IsComplete reports whether all fields of v are populated.
// A Proposal or an Insurance may only be drafted for a complete vehicle.
// Zero values are treated as missing, and a negative mileage is never
// acceptable.
func (v Vehicle) IsComplete() bool {
	switch {
	case v.ID == 0:
		return false
	case v.RegistrationNo == "", v.Country == "":
		return false
	case v.Model == "", v.Category == "":
		return false
	}
	return v.Mileage > 0
}
