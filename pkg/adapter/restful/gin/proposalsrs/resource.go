// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package proposalsrs realizes the MOT proposals resource, allowing
// the proposal negotiation REST APIs to be accepted and delegated to
// the ledger use case.
package proposalsrs

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
)

type resource struct {
	ledger *ledgeruc.UseCase
}

// Register instantiates a resource adapting the ledger use case
// instance with the relevant REST APIs including:
//  1. POST request to /api/ccweb/v1/proposals
//     in order to draft a proposal,
//  2. GET request to /api/ccweb/v1/proposals
//     in order to list the caller proposals,
//  3. POST request to /api/ccweb/v1/proposals/:id/:op
//     with op being distribute, agree, reject, or pay,
//  4. PATCH request to /api/ccweb/v1/proposals/:id
//     in order to update the price of an agreed proposal,
//  5. DELETE request to /api/ccweb/v1/proposals/:id
//     in order to cancel an agreed proposal.
func Register(r *gin.RouterGroup, ledger *ledgeruc.UseCase) {
	rs := &resource{ledger: ledger}
	r.POST("proposals", rs.Draft)
	r.GET("proposals", rs.List)
	r.POST("proposals/:id/distribute", rs.Distribute)
	r.POST("proposals/:id/agree", rs.Agree)
	r.POST("proposals/:id/reject", rs.Reject)
	r.POST("proposals/:id/pay", rs.Pay)
	r.PATCH("proposals/:id", rs.Update)
	r.DELETE("proposals/:id", rs.Cancel)
}

func (rs *resource) Draft(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	p, ok := rs.DserDraftReq(c, s)
	if !ok {
		return
	}
	p, err := rs.ledger.DraftProposal(c, s, p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (rs *resource) List(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	docs, err := rs.ledger.Documents(c, s, model.DocumentKindProposal)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (rs *resource) Distribute(c *gin.Context) {
	rs.withPrice(c, rs.ledger.DistributeProposal)
}

func (rs *resource) Update(c *gin.Context) {
	rs.withPrice(c, rs.ledger.UpdateProposal)
}

func (rs *resource) Agree(c *gin.Context) {
	serdser.ByID(c, rs.ledger.AgreeProposal)
}

func (rs *resource) Reject(c *gin.Context) {
	serdser.ByID(c, rs.ledger.RejectProposal)
}

func (rs *resource) Pay(c *gin.Context) {
	serdser.ByID(c, rs.ledger.PayProposal)
}

func (rs *resource) Cancel(c *gin.Context) {
	serdser.DeleteByID(c, rs.ledger.CancelProposal)
}

type priceOp func(
	ctx context.Context, s model.Session, id uuid.UUID, price model.Amount,
) (model.Proposal, error)

func (rs *resource) withPrice(c *gin.Context, f priceOp) {
	price, ok := rs.DserPriceReq(c)
	if !ok {
		return
	}
	serdser.ByID(c, func(
		ctx context.Context, s model.Session, id uuid.UUID,
	) (model.Proposal, error) {
		return f(ctx, s, id, price)
	})
}
