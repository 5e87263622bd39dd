// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package motsrs realizes the MOT test records resource.
package motsrs

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
//  1. POST request to /api/ccweb/v1/mots
//     in order to issue an MOT by consuming a paid proposal,
//  2. GET request to /api/ccweb/v1/mots
//     in order to list the caller MOT records,
//  3. POST request to /api/ccweb/v1/mots/search
//     in order to find the passed MOT of a vehicle which expires first,
//  4. PATCH request to /api/ccweb/v1/mots/:id
//     in order to update the test result,
//  5. DELETE request to /api/ccweb/v1/mots/:id
//     in order to cancel an MOT.
func Register(r *gin.RouterGroup, ledger *ledgeruc.UseCase) {
	rs := &resource{ledger: ledger}
	r.POST("mots", rs.Issue)
	r.GET("mots", rs.List)
	r.POST("mots/search", rs.Search)
	r.PATCH("mots/:id", rs.Update)
	r.DELETE("mots/:id", rs.Cancel)
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
	m, err := rs.ledger.IssueMOT(c, s, req.proposalID, req.location, req.result)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (rs *resource) List(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	docs, err := rs.ledger.Documents(c, s, model.DocumentKindMOT)
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
	m, err := rs.ledger.FindMOTForVehicle(c, s, v)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (rs *resource) Update(c *gin.Context) {
	r, ok := rs.DserResultReq(c)
	if !ok {
		return
	}
	serdser.ByID(c, func(
		ctx context.Context, s model.Session, id uuid.UUID,
	) (model.MOT, error) {
		return rs.ledger.UpdateMOT(ctx, s, id, r)
	})
}

func (rs *resource) Cancel(c *gin.Context) {
	serdser.DeleteByID(c, rs.ledger.CancelMOT)
}
