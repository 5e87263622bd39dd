// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema verifies the vault tables of a database schema for
// the integration test suites. Only tables and their columns are
// checked. Existing rows are ignored.
package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// Columns maps each vault table to its expected columns and their
// information_schema data types.
var Columns = map[string]map[string]string{
	"states": {
		"id":           "uuid",
		"seq":          "bigint",
		"kind":         "text",
		"linear_id":    "uuid",
		"participants": "jsonb",
		"payload":      "jsonb",
		"consumed":     "boolean",
		"created_at":   "timestamp with time zone",
	},
	"published_copies": {
		"id":            "uuid",
		"seq":           "bigint",
		"owner":         "text",
		"doc_kind":      "text",
		"doc_linear_id": "uuid",
		"payload":       "jsonb",
		"consumed":      "boolean",
		"created_at":    "timestamp with time zone",
	},
}

// Verify checks that the schema schema holds exactly the vault tables
// with their expected columns using the c connection.
func Verify(ctx context.Context, t *testing.T, c repo.Conn, schema string) {
	rows, err := c.Query(ctx, `
SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1`, schema)
	require.NoError(t, err, "querying columns of %q", schema)
	defer rows.Close()
	actual := make(map[string]map[string]string)
	for rows.Next() {
		var table, column, typ string
		require.NoError(t, rows.Scan(&table, &column, &typ))
		if actual[table] == nil {
			actual[table] = make(map[string]string)
		}
		actual[table][column] = typ
	}
	require.NoError(t, rows.Err(), "iterating columns of %q", schema)
	assert.Equal(t, Columns, actual, "columns of %q", schema)
}
