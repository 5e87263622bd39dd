// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// Tx represents a database transaction which records one transition.
// It is unsafe to be used concurrently. All inputs of a transition are
// consumed and all of its outputs are inserted in one Tx, so competing
// transitions which try to consume the same state are serialized and
// all but one of them fail.
// Tx embeds the *gorm.DB, hence, may be used like GORM from within
// the repository packages.
type Tx struct {
	*gorm.DB
}

// Exec runs sql with args and returns the number of affected rows.
// Without args, sql may contain several semi-colon separated
// statements.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tt := tx.DB.WithContext(ctx).Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, Translate(err)
	}
	return tt.RowsAffected, nil
}

// Query runs sql with args and returns its result set. The Rows must
// be closed before running another statement in tx.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := tx.DB.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, Translate(err)
	}
	return rowsAdapter{rows}, nil
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB, configured to use ctx.
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}
