// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package proposalsrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

type rawDraftReq struct {
	Tester      string          `json:"tester" binding:"required"`
	Owner       string          `json:"owner" binding:"required"`
	Vehicle     serdser.Vehicle `json:"vehicle"`
	Price       string          `json:"price" binding:"required"`
	ActionParty string          `json:"action_party"`
}

type rawPriceReq struct {
	Price string `json:"price" binding:"required"`
}

// DserDraftReq reads a proposal draft. The action party defaults to
// the caller.
func (rs *resource) DserDraftReq(
	c *gin.Context, s model.Session,
) (model.Proposal, bool) {
	req := &rawDraftReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return model.Proposal{}, false
	}
	var errs serdser.Errs
	p := model.Proposal{
		Tester:      serdser.Party(&errs, "tester", req.Tester),
		Owner:       serdser.Party(&errs, "owner", req.Owner),
		Vehicle:     req.Vehicle.ToModel(),
		Price:       serdser.Amount(&errs, "price", req.Price),
		ActionParty: s.Caller,
	}
	if req.ActionParty != "" {
		p.ActionParty = serdser.Party(&errs, "action_party", req.ActionParty)
	}
	if serdser.Reject(c, errs) {
		return model.Proposal{}, false
	}
	return p, true
}

func (rs *resource) DserPriceReq(c *gin.Context) (model.Amount, bool) {
	req := &rawPriceReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return model.Amount{}, false
	}
	var errs serdser.Errs
	price := serdser.Amount(&errs, "price", req.Price)
	if serdser.Reject(c, errs) {
		return model.Amount{}, false
	}
	return price, true
}
