// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insurancesrs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
)

type rawTermsReq struct {
	Price         string    `json:"price" binding:"required"`
	Coverage      string    `json:"coverage" binding:"required"`
	EffectiveDate time.Time `json:"effective_date" binding:"required"`
	ExpiryDate    time.Time `json:"expiry_date" binding:"required"`
}

func (r rawTermsReq) toTerms(errs *serdser.Errs) ledgeruc.InsuranceTerms {
	return ledgeruc.InsuranceTerms{
		Price:         serdser.Amount(errs, "price", r.Price),
		Coverage:      r.Coverage,
		EffectiveDate: r.EffectiveDate,
		ExpiryDate:    r.ExpiryDate,
	}
}

type rawDraftReq struct {
	Insurer     string          `json:"insurer" binding:"required"`
	Insured     string          `json:"insured" binding:"required"`
	Vehicle     serdser.Vehicle `json:"vehicle"`
	ActionParty string          `json:"action_party"`
	rawTermsReq
}

type rawIssueReq struct {
	MOTCopy string `json:"mot_copy" binding:"required"`
}

// DserDraftReq reads a policy draft. The action party defaults to the
// caller.
func (rs *resource) DserDraftReq(
	c *gin.Context, s model.Session,
) (model.Insurance, bool) {
	req := &rawDraftReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return model.Insurance{}, false
	}
	var errs serdser.Errs
	t := req.toTerms(&errs)
	i := model.Insurance{
		Insurer:       serdser.Party(&errs, "insurer", req.Insurer),
		Insured:       serdser.Party(&errs, "insured", req.Insured),
		Vehicle:       req.Vehicle.ToModel(),
		Price:         t.Price,
		Coverage:      t.Coverage,
		EffectiveDate: t.EffectiveDate,
		ExpiryDate:    t.ExpiryDate,
		ActionParty:   s.Caller,
	}
	if req.ActionParty != "" {
		i.ActionParty = serdser.Party(&errs, "action_party", req.ActionParty)
	}
	if serdser.Reject(c, errs) {
		return model.Insurance{}, false
	}
	return i, true
}

func (rs *resource) DserTermsReq(c *gin.Context) (ledgeruc.InsuranceTerms, bool) {
	req := &rawTermsReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return ledgeruc.InsuranceTerms{}, false
	}
	var errs serdser.Errs
	t := req.toTerms(&errs)
	if serdser.Reject(c, errs) {
		return ledgeruc.InsuranceTerms{}, false
	}
	return t, true
}

func (rs *resource) DserIssueReq(c *gin.Context) (uuid.UUID, bool) {
	req := &rawIssueReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return uuid.Nil, false
	}
	var errs serdser.Errs
	id := serdser.UUID(&errs, "mot_copy", req.MOTCopy)
	return id, !serdser.Reject(c, errs)
}
