// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package transitionsrs realizes the offline transition verification
// resource. Posted transitions are checked against the contract rules
// and nothing is recorded.
package transitionsrs

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

type resource struct {
	verify *verifyuc.UseCase
}

// Register instantiates a resource adapting the verify use case with
// the POST request to /api/ccweb/v1/transitions/verify which accepts
// a codec.Transition body and an optional `at` RFC 3339 query param
// as the verification time (defaults to now).
func Register(r *gin.RouterGroup, verify *verifyuc.UseCase) {
	rs := &resource{verify: verify}
	r.POST("transitions/verify", rs.Verify)
}

type rawVerifyQuery struct {
	At string `form:"at" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (rs *resource) Verify(c *gin.Context) {
	q := &rawVerifyQuery{}
	if ok := serdser.Bind(c, q, binding.Query); !ok {
		return
	}
	now := time.Now()
	if q.At != "" {
		now, _ = time.Parse(time.RFC3339, q.At)
	}
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		serdser.SerErr(c, cerr.BadRequest(err))
		return
	}
	tx, err := codec.UnmarshalTransition(b)
	if err != nil {
		serdser.SerErr(c, cerr.BadRequest(err))
		return
	}
	if err := rs.verify.Verify(c, tx, now); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
