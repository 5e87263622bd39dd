// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package documentsrs realizes a kind agnostic read-only resource for
// the documents of the caller.
package documentsrs

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
)

type resource struct {
	ledger *ledgeruc.UseCase
}

// Register instantiates a resource adapting the ledger use case
// instance with the GET request to /api/ccweb/v1/documents/:id
// which returns the latest version of a document as a kind and state
// envelope.
func Register(r *gin.RouterGroup, ledger *ledgeruc.UseCase) {
	rs := &resource{ledger: ledger}
	r.GET("documents/:id", rs.Fetch)
}

func (rs *resource) Fetch(c *gin.Context) {
	serdser.ByID(c, func(
		ctx context.Context, s model.Session, id uuid.UUID,
	) (codec.Envelope, error) {
		doc, err := rs.ledger.Document(ctx, s, id)
		if err != nil {
			return codec.Envelope{}, err
		}
		return codec.Wrap(doc)
	})
}

