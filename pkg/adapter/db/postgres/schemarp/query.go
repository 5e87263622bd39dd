// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
	"github.com/alicer3/car-cordapp/pkg/core/scram"
)

// scramIterations is the iterations count of the SCRAM password
// hashes, as recommended by RFC 7677.
const scramIterations = 15000

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func roleIdent(suffix, role repo.Role) string {
	return ident(string(role + suffix))
}

// DropIfExists drops the `schema` schema without cascading if it
// exists.
func DropIfExists[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "DROP SCHEMA IF EXISTS "+ident(schema))
	return err
}

// CreateSchema creates the `schema` schema.
func CreateSchema[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "CREATE SCHEMA "+ident(schema))
	return err
}

// CreateRoleIfNotExists creates the `role` login role (suffixed by
// roleSuffix) without any password if it does not exist.
func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix, role repo.Role,
) error {
	name := string(role + roleSuffix)
	rows, err := q.Query(
		ctx, "SELECT 1 FROM pg_catalog.pg_roles WHERE rolname=$1", name,
	)
	if err != nil {
		return fmt.Errorf("finding role %q: %w", name, err)
	}
	exists := rows.Next()
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("finding role %q: %w", name, err)
	}
	if exists {
		return nil
	}
	_, err = q.Exec(ctx, "CREATE ROLE "+ident(name)+" WITH LOGIN")
	return err
}

// GrantPrivileges grants ALL privileges on the `schema` schema and its
// current tables and sequences to the `role` role.
func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role,
	schema string, role repo.Role,
) error {
	s, r := ident(schema), roleIdent(roleSuffix, role)
	_, err := q.Exec(ctx, fmt.Sprintf(`
GRANT ALL PRIVILEGES ON SCHEMA %[1]s TO %[2]s;
GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA %[1]s TO %[2]s;
GRANT ALL PRIVILEGES ON ALL SEQUENCES IN SCHEMA %[1]s TO %[2]s;
`, s, r))
	return err
}

// SetSearchPath alters the `role` role and sets its default
// search_path to the `schema` schema alone.
func SetSearchPath[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role,
	schema string, role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"ALTER ROLE %s SET search_path TO %s",
		roleIdent(roleSuffix, role), ident(schema),
	))
	return err
}

// ChangePasswords updates the passwords of the roles in tx.
// The passwords are hashed with hasher, so they are never sent to the
// database server in plaintext.
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return fmt.Errorf(
			"%d roles and %d passwords do not match",
			len(roles), len(passwords),
		)
	}
	for i, role := range roles {
		h, err := hasher.Hash(passwords[i], "", scramIterations)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", role, err)
		}
		// hashes are base64 and punctuation chars which need no quoting
		_, err = tx.Exec(ctx, fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD '%s'",
			roleIdent(roleSuffix, role), h,
		))
		if err != nil {
			return fmt.Errorf("changing password of %q: %w", role, err)
		}
	}
	return nil
}

// CreateTables creates the vault tables of the `schema` schema.
func CreateTables(ctx context.Context, tx *postgres.Tx, schema string) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
CREATE TABLE %[1]s.states (
	id uuid PRIMARY KEY,
	seq bigserial NOT NULL,
	kind text NOT NULL,
	linear_id uuid,
	participants jsonb NOT NULL,
	payload jsonb NOT NULL,
	consumed boolean NOT NULL DEFAULT false,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX states_linear_id_idx ON %[1]s.states (linear_id)
	WHERE NOT consumed;
CREATE INDEX states_participants_idx ON %[1]s.states
	USING gin (participants);
CREATE TABLE %[1]s.published_copies (
	id uuid PRIMARY KEY,
	seq bigserial NOT NULL,
	owner text NOT NULL,
	doc_kind text NOT NULL,
	doc_linear_id uuid NOT NULL,
	payload jsonb NOT NULL,
	consumed boolean NOT NULL DEFAULT false,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX published_copies_owner_idx
	ON %[1]s.published_copies (owner, doc_linear_id) WHERE NOT consumed;
`, ident(schema)))
	return err
}
