// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine, so other adapters (such as
// the config package) may create and configure an engine without
// depending on the gin-gonic module directly.
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New creates an engine without any default middleware and installs
// the given middlewares in order.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

func Logger() HandlerFunc {
	return gin.Logger()
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}

// Mount serves h for GET requests to the path of e, e.g., in order to
// expose the prometheus metrics.
func Mount(e *Engine, path string, h http.Handler) {
	e.GET(path, gin.WrapH(h))
}
