// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract

import (
	"time"

	"github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// motValidityYears is how long a passed MOT test remains usable
// as a reference of other documents, counting from its test date.
const motValidityYears = 1

// singlePublishedMOT returns the only MOT which is wrapped by the
// published copies among inputs.
func singlePublishedMOT(inputs []model.State) (model.MOT, error) {
	mots := publishedOf[model.MOT](inputs)
	if len(mots) != 1 {
		return model.MOT{}, errors.Wrapf(
			ruleerrors.ErrMissingPublishedMOT,
			"%d published mot inputs", len(mots),
		)
	}
	return mots[0], nil
}

// singlePublishedInsurance returns the only Insurance which is wrapped
// by the published copies among inputs.
func singlePublishedInsurance(inputs []model.State) (model.Insurance, error) {
	ins := publishedOf[model.Insurance](inputs)
	if len(ins) != 1 {
		return model.Insurance{}, errors.Wrapf(
			ruleerrors.ErrMissingPublishedInsurance,
			"%d published insurance inputs", len(ins),
		)
	}
	return ins[0], nil
}

// CheckMOTReference verifies that m may back a document of the given
// vehicle and owner which expires at expiry. The MOT must be passed,
// for the same vehicle and owner, tested after one year before now,
// and must expire after expiry.
func CheckMOTReference(
	m model.MOT, vehicle model.Vehicle, owner model.Party,
	expiry, now time.Time,
) error {
	if !m.Result {
		return errors.Wrapf(
			ruleerrors.ErrFailedMOT, "mot %v has not passed", m.LinearID,
		)
	}
	if m.Vehicle != vehicle {
		return errors.Wrapf(
			ruleerrors.ErrVehicleMismatch,
			"mot of vehicle %d instead of %d", m.Vehicle.ID, vehicle.ID,
		)
	}
	if m.Owner != owner {
		return errors.Wrapf(
			ruleerrors.ErrOwnerMismatch,
			"mot owned by %s instead of %s", m.Owner, owner,
		)
	}
	if !m.TestDate.After(now.AddDate(-motValidityYears, 0, 0)) {
		return errors.Wrapf(
			ruleerrors.ErrStaleMOT, "tested at %v", m.TestDate,
		)
	}
	if !m.ExpiryDate.After(expiry) {
		return errors.Wrapf(
			ruleerrors.ErrMOTExpiresEarly,
			"mot expires at %v, not after %v", m.ExpiryDate, expiry,
		)
	}
	return nil
}

// CheckInsuranceReference verifies that ins may back a tax record t.
// The policy must be issued, for the same vehicle, insuring the tax
// record owner, taking effect before t and expiring after t.
func CheckInsuranceReference(ins model.Insurance, t model.Tax) error {
	if ins.Status != model.StatusIssued {
		return errors.Wrapf(
			ruleerrors.ErrInsuranceNotIssued,
			"insurance %v is %v", ins.LinearID, ins.Status,
		)
	}
	if ins.Vehicle != t.Vehicle {
		return errors.Wrapf(
			ruleerrors.ErrVehicleMismatch,
			"insurance of vehicle %d instead of %d",
			ins.Vehicle.ID, t.Vehicle.ID,
		)
	}
	if ins.Insured != t.Owner {
		return errors.Wrapf(
			ruleerrors.ErrOwnerMismatch,
			"insurance of %s instead of %s", ins.Insured, t.Owner,
		)
	}
	if !ins.EffectiveDate.Before(t.EffectiveDate) {
		return errors.Wrapf(
			ruleerrors.ErrInsuranceStartsLate,
			"insurance takes effect at %v, not before %v",
			ins.EffectiveDate, t.EffectiveDate,
		)
	}
	if !ins.ExpiryDate.After(t.ExpiryDate) {
		return errors.Wrapf(
			ruleerrors.ErrInsuranceExpiresEarly,
			"insurance expires at %v, not after %v",
			ins.ExpiryDate, t.ExpiryDate,
		)
	}
	return nil
}
