// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract_test

import (
	"time"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

var (
	now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	day = 24 * time.Hour

	tester  = model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	owner   = model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
	insurer = model.Party{Organisation: "Insurer", Locality: "York", Country: "GB"}
	lta     = model.Party{Organisation: "LTA", Locality: "London", Country: "GB"}
	bob     = model.Party{Organisation: "Bob", Locality: "Bristol", Country: "GB"}

	vehicle = model.Vehicle{
		ID:             1,
		RegistrationNo: "AB12 CDE",
		Country:        "GB",
		Model:          "Civic",
		Category:       "M1",
		Mileage:        42000,
	}
)

func token(holder model.Party, pounds int64) model.Token {
	return model.Token{Holder: holder, Amount: model.GBP(pounds)}
}

func proposal(status model.Status) model.Proposal {
	return model.Proposal{
		Tester:      tester,
		Owner:       owner,
		Vehicle:     vehicle,
		Price:       model.GBP(100),
		Status:      status,
		ActionParty: tester,
		LinearID:    uuid.MustParse("00000000-0000-0000-0000-000000000001"),
	}
}

func mot() model.MOT {
	return model.MOT{
		TestDate:   now.Add(-day),
		ExpiryDate: now.AddDate(1, 0, 0),
		Location:   "Leeds",
		Tester:     tester,
		Vehicle:    vehicle,
		Owner:      owner,
		Result:     true,
		LinearID:   uuid.MustParse("00000000-0000-0000-0000-000000000002"),
	}
}

func insurance(status model.Status) model.Insurance {
	return model.Insurance{
		Insurer:       insurer,
		Insured:       owner,
		Vehicle:       vehicle,
		Price:         model.GBP(300),
		Coverage:      "comprehensive",
		EffectiveDate: now.Add(-10 * day),
		ExpiryDate:    now.Add(180 * day),
		ActionParty:   insurer,
		Status:        status,
		LinearID:      uuid.MustParse("00000000-0000-0000-0000-000000000003"),
	}
}

func tax() model.Tax {
	return model.Tax{
		Authority:     lta,
		Vehicle:       vehicle,
		Owner:         owner,
		EffectiveDate: now,
		ExpiryDate:    now.Add(90 * day),
		LinearID:      uuid.MustParse("00000000-0000-0000-0000-000000000004"),
	}
}

func published(doc model.Document, by model.Party) model.Published {
	return model.Published{ID: uuid.New(), Doc: doc, Owner: by}
}

// insuranceIssue returns a valid transition which issues the policy
// after paying for it and presenting m.
func insuranceIssue(agreed model.Insurance, m model.MOT) contract.Transition {
	issued := agreed
	issued.Status = model.StatusIssued
	return contract.Transition{
		Commands: []contract.Command{
			contract.InsuranceIssue, contract.PublishedConsume,
		},
		Inputs: []model.State{
			agreed, token(owner, 500), published(m, owner),
		},
		Outputs: []model.State{
			issued, token(insurer, 300), token(owner, 200),
		},
		Signers: []model.Party{insurer, owner},
	}
}

// taxIssue returns a valid transition which issues t after paying for
// it and presenting m and i.
func taxIssue(t model.Tax, m model.MOT, i model.Insurance) contract.Transition {
	return contract.Transition{
		Commands: []contract.Command{
			contract.TaxIssue, contract.PublishedConsume,
		},
		Inputs: []model.State{
			token(owner, 1500), published(m, owner), published(i, owner),
		},
		Outputs: []model.State{
			t, token(lta, 1000), token(owner, 500),
		},
		Signers: []model.Party{lta, owner},
	}
}

// evolve returns a transition which consumes in and produces out.
func evolve(cmd contract.Command, in, out model.State) contract.Transition {
	return contract.Transition{
		Commands: []contract.Command{cmd},
		Inputs:   []model.State{in},
		Outputs:  []model.State{out},
		Signers:  []model.Party{tester, owner, insurer, lta},
	}
}
