// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization and deserialization
// helpers which are shared among the REST resources.
package serdser

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/peer"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// CosignerHeader may be repeated, once per cosigning party.
const CosignerHeader = "X-Cosigner"

// Errs collects the field validation errors of a request.
type Errs map[string][]string

func Bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var errs Errs
		for _, ferr := range err {
			AddErr(&errs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, errs)
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

func AddErr(errs *Errs, name string, msgs ...string) {
	if *errs == nil {
		*errs = make(Errs)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

func Assert(errs *Errs, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// Reject writes errs as a bad request and returns true, if there is
// any error in errs.
func Reject(c *gin.Context, errs Errs) bool {
	if errs == nil {
		return false
	}
	c.JSON(http.StatusBadRequest, errs)
	return true
}

// SerErr writes err with the status code of a *cerr.Error or 500.
// Rule violations carry their kind and rule names too.
func SerErr(c *gin.Context, err error) {
	code, detail := cerr.StatusCode(err), err.Error()
	var ce *cerr.Error
	if errors.As(err, &ce) {
		detail = ce.Err.Error()
	}
	body := gin.H{"detail": detail}
	if re, ok := ruleerrors.As(err); ok {
		body["kind"] = re.Kind().String()
		body["rule"] = re.Rule()
	}
	c.JSON(code, body)
}

// Session identifies the caller by the peer.PartyHeader header and
// its cosigners by the CosignerHeader headers. Failures are written
// as 401 and false is returned.
func Session(c *gin.Context) (model.Session, bool) {
	caller, err := model.ParseParty(c.GetHeader(peer.PartyHeader))
	if err != nil {
		SerErr(c, cerr.Authentication(err))
		return model.Session{}, false
	}
	s := model.Session{Caller: caller, Now: time.Now()}
	for _, h := range c.Request.Header.Values(CosignerHeader) {
		p, err := model.ParseParty(h)
		if err != nil {
			SerErr(c, cerr.Authentication(err))
			return model.Session{}, false
		}
		s.Cosigners = append(s.Cosigners, p)
	}
	return s, true
}

// LinearID parses the :id path param.
func LinearID(c *gin.Context, errs *Errs) uuid.UUID {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AddErr(errs, "id", "Path param id is not UUID.")
	}
	return id
}

// Party parses s, or adds an error for name.
func Party(errs *Errs, name, s string) model.Party {
	p, err := model.ParseParty(s)
	if err != nil {
		AddErr(errs, name, err.Error())
	}
	return p
}

// Amount parses s, or adds an error for name.
func Amount(errs *Errs, name, s string) model.Amount {
	a, err := model.ParseAmount(s)
	if err != nil {
		AddErr(errs, name, err.Error())
	}
	return a
}

// UUID parses s, or adds an error for name.
func UUID(errs *Errs, name, s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		AddErr(errs, name, "The "+name+" is not UUID.")
	}
	return id
}

// Vehicle is the request form of a model.Vehicle.
type Vehicle struct {
	ID             int64  `json:"id" binding:"required,gt=0"`
	RegistrationNo string `json:"registration_no" binding:"required"`
	Country        string `json:"country" binding:"required,len=2"`
	Model          string `json:"model" binding:"required"`
	Category       string `json:"category" binding:"required"`
	Mileage        int    `json:"mileage" binding:"gte=0"`
}

// ToModel converts v to a model.Vehicle.
func (v Vehicle) ToModel() model.Vehicle {
	return model.Vehicle(v)
}

// ByID runs f for the caller on the :id path param document and writes
// its result with the 200 status code.
func ByID[T any](
	c *gin.Context,
	f func(ctx context.Context, s model.Session, id uuid.UUID) (T, error),
) {
	s, ok := Session(c)
	if !ok {
		return
	}
	var errs Errs
	id := LinearID(c, &errs)
	if Reject(c, errs) {
		return
	}
	out, err := f(c, s, id)
	if err != nil {
		SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteByID runs f for the caller on the :id path param document and
// writes the 204 status code on success.
func DeleteByID(
	c *gin.Context,
	f func(ctx context.Context, s model.Session, id uuid.UUID) error,
) {
	s, ok := Session(c)
	if !ok {
		return
	}
	var errs Errs
	id := LinearID(c, &errs)
	if Reject(c, errs) {
		return
	}
	if err := f(c, s, id); err != nil {
		SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DserVehicle reads a vehicle body.
func DserVehicle(c *gin.Context) (model.Vehicle, bool) {
	req := &Vehicle{}
	if ok := Bind(c, req, binding.JSON); !ok {
		return model.Vehicle{}, false
	}
	return req.ToModel(), true
}
