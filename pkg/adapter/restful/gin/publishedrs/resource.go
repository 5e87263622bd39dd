// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package publishedrs realizes the published copies resource. It also
// serves the self-revocation requests of other nodes.
package publishedrs

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/serdser"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
)

type resource struct {
	publish     *publishuc.UseCase
	defaultMode model.PublishMode
}

// Register instantiates a resource adapting the publish use case
// instance with the relevant REST APIs including:
//  1. POST request to /api/ccweb/v1/published
//     in order to publish a copy of a document,
//  2. GET request to /api/ccweb/v1/published?document_id=...
//     in order to list the caller copies of a document,
//  3. POST request to /api/ccweb/v1/published/revoke
//     in order to revoke all copies of a document at all participants,
//  4. POST request to /api/ccweb/v1/published/self-revoke
//     in order to revoke the caller copies of the posted document.
//
// The defaultMode is used when a publish request names no mode.
func Register(
	r *gin.RouterGroup, publish *publishuc.UseCase,
	defaultMode model.PublishMode,
) {
	rs := &resource{publish: publish, defaultMode: defaultMode}
	r.POST("published", rs.Publish)
	r.GET("published", rs.List)
	r.POST("published/revoke", rs.Revoke)
	r.POST("published/self-revoke", rs.SelfRevoke)
}

type rawPublishReq struct {
	DocumentID string `json:"document_id" binding:"required"`
	Mode       string `json:"mode" binding:"omitempty,oneof=NEWISSUE REUSE"`
}

type rawDocumentQuery struct {
	DocumentID string `form:"document_id" binding:"required"`
}

func (rs *resource) Publish(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	req := &rawPublishReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	var errs serdser.Errs
	id := serdser.UUID(&errs, "document_id", req.DocumentID)
	mode := rs.defaultMode
	if req.Mode != "" {
		var err error
		mode, err = model.ParsePublishMode(req.Mode)
		serdser.Assert(&errs, err == nil, "mode", "Unknown publish mode.")
	}
	if serdser.Reject(c, errs) {
		return
	}
	p, err := rs.publish.Publish(c, s, id, mode)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	v, err := serCopy(p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (rs *resource) List(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	req := &rawDocumentQuery{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return
	}
	var errs serdser.Errs
	id := serdser.UUID(&errs, "document_id", req.DocumentID)
	if serdser.Reject(c, errs) {
		return
	}
	copies, err := rs.publish.Copies(c, s, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	views := make([]copyView, 0, len(copies))
	for _, p := range copies {
		v, err := serCopy(p)
		if err != nil {
			serdser.SerErr(c, err)
			return
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, views)
}

func (rs *resource) Revoke(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	req := &struct {
		DocumentID string `json:"document_id" binding:"required"`
	}{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	var errs serdser.Errs
	id := serdser.UUID(&errs, "document_id", req.DocumentID)
	if serdser.Reject(c, errs) {
		return
	}
	if err := rs.publish.Revoke(c, s, id); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SelfRevoke expects a codec envelope of the document in the body.
func (rs *resource) SelfRevoke(c *gin.Context) {
	s, ok := serdser.Session(c)
	if !ok {
		return
	}
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		serdser.SerErr(c, cerr.BadRequest(err))
		return
	}
	doc, err := codec.UnmarshalDocument(b)
	if err != nil {
		serdser.SerErr(c, cerr.BadRequest(err))
		return
	}
	n, err := rs.publish.SelfRevoke(c, s, doc)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": n})
}

type copyView struct {
	ID    uuid.UUID       `json:"id"`
	Owner model.Party     `json:"owner"`
	Doc   json.RawMessage `json:"doc"`
}

func serCopy(p model.Published) (copyView, error) {
	doc, err := codec.MarshalDocument(p.Doc)
	if err != nil {
		return copyView{}, err
	}
	return copyView{ID: p.ID, Owner: p.Owner, Doc: doc}, nil
}
