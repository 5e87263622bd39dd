// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package motsrs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
)

type rawResultReq struct {
	TestDate   time.Time `json:"test_date" binding:"required"`
	ExpiryDate time.Time `json:"expiry_date" binding:"required"`
	Result     *bool     `json:"result" binding:"required"`
}

func (r rawResultReq) toResult() ledgeruc.MOTResult {
	return ledgeruc.MOTResult{
		TestDate:   r.TestDate,
		ExpiryDate: r.ExpiryDate,
		Result:     *r.Result,
	}
}

type rawIssueReq struct {
	ProposalID string `json:"proposal_id" binding:"required"`
	Location   string `json:"location" binding:"required"`
	rawResultReq
}

type issueReq struct {
	proposalID uuid.UUID
	location   string
	result     ledgeruc.MOTResult
}

func (rs *resource) DserIssueReq(c *gin.Context) (issueReq, bool) {
	req := &rawIssueReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return issueReq{}, false
	}
	var errs serdser.Errs
	val := issueReq{
		proposalID: serdser.UUID(&errs, "proposal_id", req.ProposalID),
		location:   req.Location,
		result:     req.toResult(),
	}
	if serdser.Reject(c, errs) {
		return issueReq{}, false
	}
	return val, true
}

func (rs *resource) DserResultReq(c *gin.Context) (ledgeruc.MOTResult, bool) {
	req := &rawResultReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return ledgeruc.MOTResult{}, false
	}
	return req.toResult(), true
}
