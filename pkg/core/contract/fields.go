// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Fields is a set of document fields, as a bit mask.
type Fields uint32

// Document fields which may be compared between an input and an output.
const (
	FieldTester Fields = 1 << iota
	FieldOwner
	FieldInsurer
	FieldInsured
	FieldAuthority
	FieldVehicle
	FieldPrice
	FieldStatus
	FieldActionParty
	FieldCoverage
	FieldLocation
	FieldResult
	FieldTestDate
	FieldEffectiveDate
	FieldExpiryDate
	FieldLinearID
)

var fieldNames = []string{
	"tester", "owner", "insurer", "insured", "authority", "vehicle",
	"price", "status", "action_party", "coverage", "location", "result",
	"test_date", "effective_date", "expiry_date", "linear_id",
}

// String lists the field names, joined by commas.
func (f Fields) String() string {
	var names []string
	for i, name := range fieldNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

// Mutable fields per command. Commands which are missing here may not
// change any field of their documents.
var (
	proposalMutable = map[ProposalCommand]Fields{
		ProposalDistribute: FieldStatus | FieldPrice | FieldActionParty,
		ProposalAgree:      FieldStatus,
		ProposalReject:     FieldStatus,
		ProposalUpdate:     FieldPrice,
		ProposalPay:        FieldStatus,
	}
	insuranceMutable = map[InsuranceCommand]Fields{
		InsuranceDistribute: FieldStatus | FieldPrice | FieldEffectiveDate |
			FieldExpiryDate | FieldCoverage | FieldActionParty,
		InsuranceAgree:  FieldStatus,
		InsuranceReject: FieldStatus,
		InsuranceUpdate: FieldPrice | FieldEffectiveDate | FieldExpiryDate |
			FieldCoverage,
		InsuranceIssue: FieldStatus,
	}
	motMutable = map[MOTCommand]Fields{
		MOTUpdate: FieldTestDate | FieldExpiryDate | FieldResult,
	}
	taxMutable = map[TaxCommand]Fields{
		TaxUpdate: FieldEffectiveDate | FieldExpiryDate,
	}
)

// DiffProposal returns the set of fields which differ between a and b.
func DiffProposal(a, b model.Proposal) Fields {
	var f Fields
	f |= when(a.Tester != b.Tester, FieldTester)
	f |= when(a.Owner != b.Owner, FieldOwner)
	f |= when(a.Vehicle != b.Vehicle, FieldVehicle)
	f |= when(a.Price != b.Price, FieldPrice)
	f |= when(a.Status != b.Status, FieldStatus)
	f |= when(a.ActionParty != b.ActionParty, FieldActionParty)
	f |= when(a.LinearID != b.LinearID, FieldLinearID)
	return f
}

// DiffMOT returns the set of fields which differ between a and b.
// Times are compared as instants.
func DiffMOT(a, b model.MOT) Fields {
	var f Fields
	f |= when(!a.TestDate.Equal(b.TestDate), FieldTestDate)
	f |= when(!a.ExpiryDate.Equal(b.ExpiryDate), FieldExpiryDate)
	f |= when(a.Location != b.Location, FieldLocation)
	f |= when(a.Tester != b.Tester, FieldTester)
	f |= when(a.Vehicle != b.Vehicle, FieldVehicle)
	f |= when(a.Owner != b.Owner, FieldOwner)
	f |= when(a.Result != b.Result, FieldResult)
	f |= when(a.LinearID != b.LinearID, FieldLinearID)
	return f
}

// DiffInsurance returns the set of fields which differ between a and b.
// Times are compared as instants.
func DiffInsurance(a, b model.Insurance) Fields {
	var f Fields
	f |= when(a.Insurer != b.Insurer, FieldInsurer)
	f |= when(a.Insured != b.Insured, FieldInsured)
	f |= when(a.Vehicle != b.Vehicle, FieldVehicle)
	f |= when(a.Price != b.Price, FieldPrice)
	f |= when(a.Coverage != b.Coverage, FieldCoverage)
	f |= when(!a.EffectiveDate.Equal(b.EffectiveDate), FieldEffectiveDate)
	f |= when(!a.ExpiryDate.Equal(b.ExpiryDate), FieldExpiryDate)
	f |= when(a.ActionParty != b.ActionParty, FieldActionParty)
	f |= when(a.Status != b.Status, FieldStatus)
	f |= when(a.LinearID != b.LinearID, FieldLinearID)
	return f
}

// DiffTax returns the set of fields which differ between a and b.
// Times are compared as instants.
func DiffTax(a, b model.Tax) Fields {
	var f Fields
	f |= when(a.Authority != b.Authority, FieldAuthority)
	f |= when(a.Vehicle != b.Vehicle, FieldVehicle)
	f |= when(a.Owner != b.Owner, FieldOwner)
	f |= when(!a.EffectiveDate.Equal(b.EffectiveDate), FieldEffectiveDate)
	f |= when(!a.ExpiryDate.Equal(b.ExpiryDate), FieldExpiryDate)
	f |= when(a.LinearID != b.LinearID, FieldLinearID)
	return f
}

func when(cond bool, f Fields) Fields {
	if cond {
		return f
	}
	return 0
}

// requireOnlyChanged returns ErrImmutableFieldChanged if changed has
// any field which is not in the mutable set.
func requireOnlyChanged(cmd Command, changed, mutable Fields) error {
	if extra := changed &^ mutable; extra != 0 {
		return errors.Wrapf(
			ruleerrors.ErrImmutableFieldChanged,
			"%v may not change %s", cmd, extra,
		)
	}
	return nil
}
