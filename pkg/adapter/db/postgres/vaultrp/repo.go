// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vaultrp implements the repo.Vault interface. States are kept
// in the states table as JSON envelopes of the codec package, together
// with their kind, linear id, and participants columns which are used
// for filtering.
package vaultrp

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

func (vault *Repo) Conn(c repo.Conn) repo.VaultConnQueryer {
	return connQueryer{Conn: c.(*postgres.Conn)}
}

func (cq connQueryer) Document(
	ctx context.Context, linearID uuid.UUID,
) (repo.Stored[model.Document], error) {
	return Document(ctx, cq.Conn, linearID)
}

func (cq connQueryer) Documents(
	ctx context.Context, kind model.DocumentKind, participant model.Party,
) ([]repo.Stored[model.Document], error) {
	return Documents(ctx, cq.Conn, kind, participant)
}

func (cq connQueryer) Tokens(
	ctx context.Context, holder model.Party,
) ([]repo.Stored[model.Token], error) {
	return Tokens(ctx, cq.Conn, holder)
}

type txQueryer struct {
	*postgres.Tx
}

func (vault *Repo) Tx(tx repo.Tx) repo.VaultTxQueryer {
	return txQueryer{Tx: tx.(*postgres.Tx)}
}

func (tq txQueryer) Insert(
	ctx context.Context, states ...model.State,
) ([]uuid.UUID, error) {
	return Insert(ctx, tq.Tx, states...)
}

func (tq txQueryer) Consume(ctx context.Context, refs ...uuid.UUID) error {
	return Consume(ctx, tq.Tx, refs...)
}

func (tq txQueryer) Document(
	ctx context.Context, linearID uuid.UUID,
) (repo.Stored[model.Document], error) {
	return Document(ctx, tq.Tx, linearID)
}

func (tq txQueryer) Documents(
	ctx context.Context, kind model.DocumentKind, participant model.Party,
) ([]repo.Stored[model.Document], error) {
	return Documents(ctx, tq.Tx, kind, participant)
}

func (tq txQueryer) Tokens(
	ctx context.Context, holder model.Party,
) ([]repo.Stored[model.Token], error) {
	return Tokens(ctx, tq.Tx, holder)
}
