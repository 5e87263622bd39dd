// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memvault is an internal helper for the test packages.
// It provides an in-memory repo.Pool together with the repo.Vault and
// repo.Published repositories, so use cases and REST resources may be
// tested without a PostgreSQL container. Transactions are serialized
// and a failed transaction restores the previous snapshot.
package memvault

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// ErrRawSQL is returned by the Exec and Query methods.
var ErrRawSQL = errors.New("memvault does not run raw SQL")

type stateRow struct {
	ref      uuid.UUID
	state    model.State
	consumed bool
}

type copyRow struct {
	copy     model.Published
	consumed bool
}

// Store keeps the states and published copies.
type Store struct {
	txMu sync.Mutex

	mu     sync.Mutex
	states []stateRow
	copies []copyRow
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Pool returns a repo.Pool which runs its handlers against s.
func (s *Store) Pool() repo.Pool {
	return pool{s}
}

// Vault returns the vault repository which is backed by s.
func (s *Store) Vault() repo.Vault {
	return vault{s}
}

// Published returns the published copies repository backed by s.
func (s *Store) Published() repo.Published {
	return published{s}
}

// Consumed reports whether the ref state is consumed.
func (s *Store) Consumed(ref uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.states {
		if r.ref == ref {
			return r.consumed
		}
	}
	return false
}

// Unconsumed returns all unconsumed states in their insertion order.
func (s *Store) Unconsumed() []model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ss []model.State
	for _, r := range s.states {
		if !r.consumed {
			ss = append(ss, r.state)
		}
	}
	return ss
}

// CopyConsumed reports whether the id published copy is consumed.
func (s *Store) CopyConsumed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.copies {
		if r.copy.ID == id {
			return r.consumed
		}
	}
	return false
}

type pool struct {
	s *Store
}

func (p pool) Conn(ctx context.Context, handler repo.ConnHandler) error {
	return handler(ctx, conn{p.s})
}

type queryer struct{}

func (queryer) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (queryer) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

type conn struct {
	s *Store
}

func (conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return queryer{}.Exec(ctx, sql, args...)
}

func (conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return queryer{}.Query(ctx, sql, args...)
}

func (conn) IsConn() {
}

func (c conn) Tx(ctx context.Context, handler repo.TxHandler) error {
	s := c.s
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	states := slices.Clone(s.states)
	copies := slices.Clone(s.copies)
	s.mu.Unlock()
	if err := handler(ctx, tx{s}); err != nil {
		s.mu.Lock()
		s.states, s.copies = states, copies
		s.mu.Unlock()
		return err
	}
	return nil
}

type tx struct {
	s *Store
}

func (tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return queryer{}.Exec(ctx, sql, args...)
}

func (tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return queryer{}.Query(ctx, sql, args...)
}

func (tx) IsTx() {
}

type vault struct {
	s *Store
}

func (v vault) Conn(repo.Conn) repo.VaultConnQueryer {
	return vaultQueryer{v.s}
}

func (v vault) Tx(repo.Tx) repo.VaultTxQueryer {
	return vaultQueryer{v.s}
}

type vaultQueryer struct {
	s *Store
}

func (q vaultQueryer) Insert(
	_ context.Context, states ...model.State,
) ([]uuid.UUID, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	refs := make([]uuid.UUID, 0, len(states))
	for _, st := range states {
		if _, ok := st.(model.Published); ok {
			return nil, fmt.Errorf("published copies are not vault states")
		}
		ref := uuid.New()
		q.s.states = append(q.s.states, stateRow{ref: ref, state: st})
		refs = append(refs, ref)
	}
	return refs, nil
}

func (q vaultQueryer) Consume(_ context.Context, refs ...uuid.UUID) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for _, ref := range refs {
		i := slices.IndexFunc(q.s.states, func(r stateRow) bool {
			return r.ref == ref && !r.consumed
		})
		if i < 0 {
			return cerr.Conflict(fmt.Errorf("state %v is not unconsumed", ref))
		}
		q.s.states[i].consumed = true
	}
	return nil
}

func (q vaultQueryer) Document(
	_ context.Context, linearID uuid.UUID,
) (repo.Stored[model.Document], error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for _, r := range q.s.states {
		d, ok := r.state.(model.Document)
		if ok && !r.consumed && d.DocumentID() == linearID {
			return repo.Stored[model.Document]{Ref: r.ref, State: d}, nil
		}
	}
	return repo.Stored[model.Document]{}, cerr.NotFound(
		fmt.Errorf("document %v", linearID),
	)
}

func (q vaultQueryer) Documents(
	_ context.Context, kind model.DocumentKind, participant model.Party,
) ([]repo.Stored[model.Document], error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	var docs []repo.Stored[model.Document]
	for _, r := range q.s.states {
		d, ok := r.state.(model.Document)
		if !ok || r.consumed || d.Kind() != kind {
			continue
		}
		if model.ContainsParty(d.Participants(), participant) {
			docs = append(docs, repo.Stored[model.Document]{
				Ref: r.ref, State: d,
			})
		}
	}
	return docs, nil
}

func (q vaultQueryer) Tokens(
	_ context.Context, holder model.Party,
) ([]repo.Stored[model.Token], error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	var tokens []repo.Stored[model.Token]
	for _, r := range q.s.states {
		t, ok := r.state.(model.Token)
		if ok && !r.consumed && t.Holder == holder {
			tokens = append(tokens, repo.Stored[model.Token]{
				Ref: r.ref, State: t,
			})
		}
	}
	return tokens, nil
}

type published struct {
	s *Store
}

func (p published) Conn(repo.Conn) repo.PublishedConnQueryer {
	return publishedQueryer{p.s}
}

func (p published) Tx(repo.Tx) repo.PublishedTxQueryer {
	return publishedQueryer{p.s}
}

type publishedQueryer struct {
	s *Store
}

func (q publishedQueryer) Insert(_ context.Context, p model.Published) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for _, r := range q.s.copies {
		if r.copy.ID == p.ID {
			return cerr.Conflict(fmt.Errorf("copy %v exists", p.ID))
		}
	}
	q.s.copies = append(q.s.copies, copyRow{copy: p})
	return nil
}

func (q publishedQueryer) Consume(_ context.Context, ids ...uuid.UUID) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for _, id := range ids {
		i := slices.IndexFunc(q.s.copies, func(r copyRow) bool {
			return r.copy.ID == id && !r.consumed
		})
		if i < 0 {
			return cerr.Conflict(fmt.Errorf("copy %v is not unconsumed", id))
		}
		q.s.copies[i].consumed = true
	}
	return nil
}

func (q publishedQueryer) Find(
	_ context.Context, id uuid.UUID,
) (model.Published, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	for _, r := range q.s.copies {
		if r.copy.ID == id && !r.consumed {
			return r.copy, nil
		}
	}
	return model.Published{}, cerr.NotFound(fmt.Errorf("copy %v", id))
}

func (q publishedQueryer) Owned(
	_ context.Context, owner model.Party, docID uuid.UUID,
) ([]model.Published, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	var copies []model.Published
	for _, r := range q.s.copies {
		c := r.copy
		if r.consumed || c.Owner != owner || c.Doc == nil {
			continue
		}
		if c.Doc.DocumentID() == docID {
			copies = append(copies, c)
		}
	}
	return copies, nil
}
