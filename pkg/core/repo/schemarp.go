// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema is the repository which prepares an empty database for the
// vault. It creates a schema, the database roles which use it, and
// the vault tables in that schema.
type Schema interface {
	// Conn takes a Conn interface instance, unwraps it as required,
	// and returns a SchemaConnQueryer which can manage schema and roles
	// using auto-committed statements.
	Conn(Conn) SchemaConnQueryer

	// Tx takes a Tx interface instance, unwraps it as required, and
	// returns a SchemaTxQueryer which can also change role passwords
	// and create tables in that transaction.
	Tx(Tx) SchemaTxQueryer
}

// SchemaConnQueryer lists schema operations which may use their own
// auto-committed transactions.
type SchemaConnQueryer interface {
	SchemaQueryer
}

// SchemaTxQueryer lists schema operations which must be executed in
// a transaction.
type SchemaTxQueryer interface {
	SchemaQueryer

	// ChangePasswords updates the passwords of the given roles in the
	// current transaction. The roles and passwords slices must have the
	// same length, so they can be used in pair. Passwords are hashed
	// before being sent to the database. Role names may be suffixed
	// automatically based on this queryer settings.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error

	// CreateTables creates the vault tables and their indices in the
	// schema schema. The schema must exist and be empty.
	//
	// Caller is responsible to pass a trusted schema name string.
	CreateTables(ctx context.Context, schema string) error
}

// SchemaQueryer lists schema operations which may be executed with
// either a connection or a transaction.
type SchemaQueryer interface {
	// DropIfExists drops the `schema` schema without cascading if it
	// exists. Non-empty schema may not be dropped.
	//
	// Caller is responsible to pass a trusted schema name string.
	DropIfExists(ctx context.Context, schema string) error

	// CreateSchema creates the `schema` schema which must not exist.
	//
	// Caller is responsible to pass a trusted schema name string.
	CreateSchema(ctx context.Context, schema string) error

	// CreateRoleIfNotExists creates the `role` login role without
	// a password if it does not exist. The role name may be suffixed
	// automatically based on this queryer settings.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges grants ALL privileges on the `schema` schema and
	// its tables to the `role` role.
	GrantPrivileges(ctx context.Context, schema string, role Role) error

	// SetSearchPath alters the `role` role, so its default search_path
	// contains the `schema` schema alone.
	SetSearchPath(ctx context.Context, schema string, role Role) error
}
