// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package insurancesrs realizes the insurance policies resource,
// allowing the policy negotiation and issuance REST APIs to be
// accepted and delegated to the ledger use case.
package insurancesrs

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
//  1. POST request to /api/ccweb/v1/insurances
//     in order to draft a policy,
//  2. GET request to /api/ccweb/v1/insurances
//     in order to list the caller policies,
//  3. POST request to /api/ccweb/v1/insurances/search
//     in order to find the issued policy of a vehicle,
//  4. POST request to /api/ccweb/v1/insurances/:id/:op
//     with op being distribute, agree, reject, or issue,
//  5. PATCH request to /api/ccweb/v1/insurances/:id
//     in order to update the terms of an agreed policy,
//  6. DELETE request to /api/ccweb/v1/insurances/:id
//     in order to cancel an agreed policy.
func Register(r *gin.RouterGroup, ledger *ledgeruc.UseCase) {
	rs := &resource{ledger: ledger}
	r.POST("insurances", rs.Draft)
	r.GET("insurances", rs.List)
	r.POST("insurances/search", rs.Search)
	r.POST("insurances/:id/distribute", rs.Distribute)
	r.POST("insurances/:id/agree", rs.Agree)
	r.POST("insurances/:id/reject", rs.Reject)
	r.POST("insurances/:id/issue", rs.Issue)
	r.PATCH("insurances/:id", rs.Update)
	r.DELETE("insurances/:id", rs.Cancel)
}

func (rs *resource) Draft(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	i, ok := rs.DserDraftReq(c, s)
	if !ok {
		return
	}
	i, err := rs.ledger.DraftInsurance(c, s, i)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, i)
}

func (rs *resource) List(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	docs, err := rs.ledger.Documents(c, s, model.DocumentKindInsurance)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (rs *resource) Search(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	v, ok := serdser.DserVehicle(c)
	if !ok {
		return
	}
	i, err := rs.ledger.FindInsuranceForVehicle(c, s, v)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

func (rs *resource) Distribute(c *gin.Context) {
	rs.withTerms(c, rs.ledger.DistributeInsurance)
}

func (rs *resource) Update(c *gin.Context) {
	rs.withTerms(c, rs.ledger.UpdateInsurance)
}

func (rs *resource) Agree(c *gin.Context) {
	serdser.ByID(c, rs.ledger.AgreeInsurance)
}

func (rs *resource) Reject(c *gin.Context) {
	serdser.ByID(c, rs.ledger.RejectInsurance)
}

func (rs *resource) Cancel(c *gin.Context) {
	serdser.DeleteByID(c, rs.ledger.CancelInsurance)
}

func (rs *resource) Issue(c *gin.Context) {
	motCopy, ok := rs.DserIssueReq(c)
	if !ok {
		return
	}
	serdser.ByID(c, func(
		ctx context.Context, s model.Session, id uuid.UUID,
	) (model.Insurance, error) {
		return rs.ledger.IssueInsurance(ctx, s, id, motCopy)
	})
}

type termsOp func(
	ctx context.Context, s model.Session, id uuid.UUID,
	t ledgeruc.InsuranceTerms,
) (model.Insurance, error)

func (rs *resource) withTerms(c *gin.Context, f termsOp) {
	t, ok := rs.DserTermsReq(c)
	if !ok {
		return
	}
	serdser.ByID(c, func(
		ctx context.Context, s model.Session, id uuid.UUID,
	) (model.Insurance, error) {
		return f(ctx, s, id, t)
	})
}
