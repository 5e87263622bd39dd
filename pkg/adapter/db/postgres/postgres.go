// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres adapts a PostgreSQL database, accessed through GORM
// and the pgx driver, to the repo.Pool, repo.Conn, and repo.Tx ports.
// Repositories in the sub-packages unwrap these types in order to run
// their queries.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Version is the semantic version of the vault tables which are
// created by schemarp.CreateTables.
var Version = model.SemVer{1, 0, 0}

const (
	codeUniqueViolation    = "23505"
	codeSerializationError = "40001"
)

// Translate maps PostgreSQL errors which are caused by competing
// transitions to cerr.Conflict errors. Other errors are returned as is.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation, codeSerializationError:
		return cerr.Conflict(err)
	default:
		return err
	}
}
