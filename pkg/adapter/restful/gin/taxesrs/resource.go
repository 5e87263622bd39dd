// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package taxesrs realizes the road tax records resource.
package taxesrs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
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
//  1. POST request to /api/ccweb/v1/taxes
//     in order to pay for and issue a road tax record,
//  2. GET request to /api/ccweb/v1/taxes
//     in order to list the caller tax records,
//  3. PATCH request to /api/ccweb/v1/taxes/:id
//     in order to change the validity dates,
//  4. DELETE request to /api/ccweb/v1/taxes/:id
//     in order to cancel a tax record.
func Register(r *gin.RouterGroup, ledger *ledgeruc.UseCase) {
	rs := &resource{ledger: ledger}
	r.POST("taxes", rs.Issue)
	r.GET("taxes", rs.List)
	r.PATCH("taxes/:id", rs.Update)
	r.DELETE("taxes/:id", rs.Cancel)
}

func (rs *resource) Issue(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	req, ok := rs.DserIssueReq(c)
	if !ok {
		return
	}
	t, err := rs.ledger.IssueTax(c, s, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (rs *resource) List(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	docs, err := rs.ledger.Documents(c, s, model.DocumentKindTax)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (rs *resource) Update(c *gin.Context) {
	req := &rawDatesReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	serdser.ByID(c, func(
		ctx context.Context, s model.Session, id uuid.UUID,
	) (model.Tax, error) {
		return rs.ledger.UpdateTax(ctx, s, id, ledgeruc.TaxDates(*req))
	})
}

func (rs *resource) Cancel(c *gin.Context) {
	serdser.DeleteByID(c, rs.ledger.CancelTax)
}

type rawDatesReq struct {
	EffectiveDate time.Time `json:"effective_date" binding:"required"`
	ExpiryDate    time.Time `json:"expiry_date" binding:"required"`
}

type rawIssueReq struct {
	Authority     string          `json:"authority" binding:"required"`
	Vehicle       serdser.Vehicle `json:"vehicle"`
	MOTCopy       string          `json:"mot_copy" binding:"required"`
	InsuranceCopy string          `json:"insurance_copy" binding:"required"`
	rawDatesReq
}

func (rs *resource) DserIssueReq(c *gin.Context) (ledgeruc.TaxRequest, bool) {
	req := &rawIssueReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return ledgeruc.TaxRequest{}, false
	}
	var errs serdser.Errs
	val := ledgeruc.TaxRequest{
		Authority:     serdser.Party(&errs, "authority", req.Authority),
		Vehicle:       req.Vehicle.ToModel(),
		EffectiveDate: req.EffectiveDate,
		ExpiryDate:    req.ExpiryDate,
		MOTCopy:       serdser.UUID(&errs, "mot_copy", req.MOTCopy),
		InsuranceCopy: serdser.UUID(&errs, "insurance_copy", req.InsuranceCopy),
	}
	if serdser.Reject(c, errs) {
		return ledgeruc.TaxRequest{}, false
	}
	return val, true
}
