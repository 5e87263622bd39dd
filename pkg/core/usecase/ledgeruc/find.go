// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// Document returns the latest version of the id document if the caller
// participates in it. Non-participants get a cerr.NotFound error, so
// they may not test for existence of other parties documents.
func (uc *UseCase) Document(
	ctx context.Context, s model.Session, id uuid.UUID,
) (doc model.Document, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		st, err := uc.vault.Conn(c).Document(ctx, id)
		if err != nil {
			return err
		}
		if !model.ContainsParty(st.State.Participants(), s.Caller) {
			return cerr.NotFound(fmt.Errorf("document %v", id))
		}
		doc = st.State
		return nil
	})
	return doc, err
}

// Documents lists the kind documents which the caller participates in.
func (uc *UseCase) Documents(
	ctx context.Context, s model.Session, kind model.DocumentKind,
) (docs []model.Document, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		stored, err := uc.vault.Conn(c).Documents(ctx, kind, s.Caller)
		if err != nil {
			return err
		}
		docs = make([]model.Document, 0, len(stored))
		for _, st := range stored {
			docs = append(docs, st.State)
		}
		return nil
	})
	return docs, err
}

// FindMOTForVehicle returns the passed MOT of the caller vehicle which
// expires first among the unconsumed ones.
func (uc *UseCase) FindMOTForVehicle(
	ctx context.Context, s model.Session, v model.Vehicle,
) (model.MOT, error) {
	var found model.MOT
	err := eachDocument(ctx, uc, s, model.DocumentKindMOT,
		func(m model.MOT) {
			if m.Owner != s.Caller || m.Vehicle != v || !m.Result {
				return
			}
			if found.LinearID == uuid.Nil || m.ExpiryDate.Before(found.ExpiryDate) {
				found = m
			}
		},
	)
	if err != nil {
		return model.MOT{}, err
	}
	if found.LinearID == uuid.Nil {
		return model.MOT{}, cerr.NotFound(fmt.Errorf(
			"no passed mot for vehicle %s", v.RegistrationNo,
		))
	}
	return found, nil
}

// FindInsuranceForVehicle returns the issued policy of the caller
// vehicle which expires first among the unconsumed ones.
func (uc *UseCase) FindInsuranceForVehicle(
	ctx context.Context, s model.Session, v model.Vehicle,
) (model.Insurance, error) {
	var found model.Insurance
	err := eachDocument(ctx, uc, s, model.DocumentKindInsurance,
		func(i model.Insurance) {
			if i.Insured != s.Caller || i.Vehicle != v {
				return
			}
			if i.Status != model.StatusIssued {
				return
			}
			if found.LinearID == uuid.Nil || i.ExpiryDate.Before(found.ExpiryDate) {
				found = i
			}
		},
	)
	if err != nil {
		return model.Insurance{}, err
	}
	if found.LinearID == uuid.Nil {
		return model.Insurance{}, cerr.NotFound(fmt.Errorf(
			"no issued insurance for vehicle %s", v.RegistrationNo,
		))
	}
	return found, nil
}

func eachDocument[D model.Document](
	ctx context.Context, uc *UseCase, s model.Session,
	kind model.DocumentKind, fn func(d D),
) error {
	docs, err := uc.Documents(ctx, s, kind)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if d, ok := doc.(D); ok {
			fn(d)
		}
	}
	return nil
}
