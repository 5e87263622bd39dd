// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package publishedrp implements the repo.Published interface using
// the published_copies table.
package publishedrp

import (
	"context"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (published *Repo) Conn(c repo.Conn) repo.PublishedConnQueryer {
	return connQueryer{Conn: c.(*postgres.Conn)}
}

func (cq connQueryer) Find(
	ctx context.Context, id uuid.UUID,
) (model.Published, error) {
	return Find(ctx, cq.Conn, id)
}

func (cq connQueryer) Owned(
	ctx context.Context, owner model.Party, docID uuid.UUID,
) ([]model.Published, error) {
	return Owned(ctx, cq.Conn, owner, docID)
}

type txQueryer struct {
	*postgres.Tx
}

func (published *Repo) Tx(tx repo.Tx) repo.PublishedTxQueryer {
	return txQueryer{Tx: tx.(*postgres.Tx)}
}

func (tq txQueryer) Insert(ctx context.Context, p model.Published) error {
	return Insert(ctx, tq.Tx, p)
}

func (tq txQueryer) Consume(ctx context.Context, ids ...uuid.UUID) error {
	return Consume(ctx, tq.Tx, ids...)
}

func (tq txQueryer) Find(
	ctx context.Context, id uuid.UUID,
) (model.Published, error) {
	return Find(ctx, tq.Tx, id)
}

func (tq txQueryer) Owned(
	ctx context.Context, owner model.Party, docID uuid.UUID,
) ([]model.Published, error) {
	return Owned(ctx, tq.Tx, owner, docID)
}
