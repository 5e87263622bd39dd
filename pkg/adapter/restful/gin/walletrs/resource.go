// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package walletrs realizes the escrow tokens wallet resource.
package walletrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
)

type resource struct {
	ledger *ledgeruc.UseCase
}

// Register instantiates a resource adapting the ledger use case
// instance with the relevant REST APIs including:
//  1. GET request to /api/ccweb/v1/wallet
//     in order to fetch the caller balance,
//  2. POST request to /api/ccweb/v1/wallet/deposits
//     in order to mint tokens for the caller, only if faucet is true.
func Register(r *gin.RouterGroup, ledger *ledgeruc.UseCase, faucet bool) {
	rs := &resource{ledger: ledger}
	r.GET("wallet", rs.Balance)
	if faucet {
		r.POST("wallet/deposits", rs.Deposit)
	}
}

func (rs *resource) Balance(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	sum, err := rs.ledger.Balance(c, s.Caller)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holder": s.Caller, "balance": sum})
}

func (rs *resource) Deposit(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	req := &struct {
		Amount string `json:"amount" binding:"required"`
	}{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	var errs serdser.Errs
	amount := serdser.Amount(&errs, "amount", req.Amount)
	if serdser.Reject(c, errs) {
		return
	}
	t, err := rs.ledger.Deposit(c, s.Caller, amount)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}
