// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemauc provides the database initialization use case.
// It prepares an empty ccwebN schema for the vault tables, creates the
// normal role which owns them, and renews the passwords of the admin
// and normal roles, so the `db init` command may be repeated after an
// abrupt failure.
package schemauc

import (
	"context"
	"fmt"

	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// Pool is a closable connections pool.
type Pool interface {
	repo.Pool

	// Close releases all connections of the pool.
	Close() error
}

// Settings represents the database-related settings which should be
// provided by a configuration file. It allows a connections pool to be
// established for an asked role, reports the schema version, and may
// be used as a factory for the repo.Schema repository.
type Settings interface {
	// ConnectionPool creates a connections pool for the `r` role.
	// Password values are kept in a passwords dir and if the main
	// passwords file is not usable, a renewed passwords file (as
	// written by RenewPasswords) is tried and moved over the main file
	// after a successful connection.
	ConnectionPool(ctx context.Context, r repo.Role) (Pool, error)

	// SchemaVersion returns the semantic version of the vault tables
	// which are expected by this configuration.
	SchemaVersion() model.SemVer

	// NewSchemaRepo instantiates a fresh Schema repository. Role names
	// which are passed to its methods are suffixed with the same role
	// suffix which is used by ConnectionPool and RenewPasswords.
	NewSchemaRepo() repo.Schema

	// RenewPasswords generates new secure passwords for the given
	// roles and after recording them in a temporary file, uses the
	// change function in order to update them in the database too.
	// The change function should perform the update in a transaction
	// which may or may not be committed when RenewPasswords returns.
	// After a successful commitment, the returned finalizer must be
	// called in order to move the temporary file over the main one.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context, roles []repo.Role, passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)
}

// SchemaName returns the database schema name for the given major
// version of the vault tables, that is ccwebN for version N.
func SchemaName(major uint) string {
	return fmt.Sprintf("ccweb%d", major)
}
