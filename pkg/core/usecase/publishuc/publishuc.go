// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package publishuc contains the publish UseCase which manages the
// published copies of documents. A participant of a document may
// publish a copy of it, so the copy may be consumed by another
// transition as a reference, e.g., an MOT copy is consumed while
// issuing an insurance policy. Copies may be revoked when their
// document changes. Revocation is scattered among all participants
// and each one of them revokes its own copies.
package publishuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

// Checker verifies a transition before it is recorded.
// The *verifyuc.UseCase implements this interface.
type Checker interface {
	Verify(ctx context.Context, tx contract.Transition, now time.Time) error
}

// Peers asks other parties to revoke their own copies of a document.
// The s session belongs to the party which initiated the revocation.
type Peers interface {
	Revoke(
		ctx context.Context, s model.Session, peer model.Party,
		doc model.Document,
	) error
}

// Metrics records the publish and revoke outcomes.
type Metrics interface {
	IncPublished(mode string, reused bool)
	IncRevocation(outcome string)
}

// UseCase represents the publish use case.
type UseCase struct {
	pool      repo.Pool
	vault     repo.Vault
	published repo.Published
	checker   Checker

	peers         Peers
	metrics       Metrics
	revokeTimeout time.Duration
}

// New instantiates a publish use case.
// Required parameters are passed individually, while the optional
// peers, metrics, and revocation timeout are passed as options.
// Without peers, other participants are not asked to revoke their
// copies and only the caller copies are revoked.
func New(
	p repo.Pool, v repo.Vault, pub repo.Published, c Checker,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, vault: v, published: pub, checker: c}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.revokeTimeout == 0 {
		uc.revokeTimeout = 30 * time.Second
	}
	return uc, nil
}

// Publish creates a published copy of the docID document which is
// owned by the caller. The caller must be a participant of the latest
// version of that document. With the PublishModeReuse mode, an
// existing copy of the caller which wraps an identical document is
// returned if one exists, so publishing is idempotent. With the
// PublishModeNewIssue mode, a fresh copy is created every time.
// A new copy must be signed by all participants of the document, so
// the other participants must be among the s cosigners.
func (uc *UseCase) Publish(
	ctx context.Context, s model.Session, docID uuid.UUID,
	mode model.PublishMode,
) (p model.Published, err error) {
	switch mode {
	case model.PublishModeNewIssue, model.PublishModeReuse:
	default:
		return model.Published{}, cerr.BadRequest(model.ErrUnknownPublishMode)
	}
	var reused bool
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		doc, err := uc.participatingDocument(ctx, c, s.Caller, docID)
		if err != nil {
			return err
		}
		if mode == model.PublishModeReuse {
			copies, err := uc.published.Conn(c).Owned(ctx, s.Caller, docID)
			if err != nil {
				return fmt.Errorf("listing owned copies: %w", err)
			}
			for _, cp := range copies {
				if cp.Wraps(doc) {
					p, reused = cp, true
					return nil
				}
			}
		}
		p = model.Published{ID: uuid.New(), Doc: doc, Owner: s.Caller}
		tx := contract.Transition{
			Commands: []contract.Command{contract.PublishedIssue},
			Outputs:  []model.State{p},
			Signers:  s.Signers(),
		}
		if err := uc.checker.Verify(ctx, tx, s.Now); err != nil {
			return err
		}
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.published.Tx(tx).Insert(ctx, p)
		})
	})
	if err != nil {
		return model.Published{}, err
	}
	if uc.metrics != nil {
		uc.metrics.IncPublished(mode.String(), reused)
	}
	log.Info(
		ctx, "document is published",
		log.LinearID(docID),
		log.Party("owner", s.Caller),
		slog.Bool("reused", reused),
	)
	return p, nil
}

// Revoke revokes all copies of the latest version of the docID
// document. The caller must be a participant of that document.
// See RevokeDocument for details.
func (uc *UseCase) Revoke(
	ctx context.Context, s model.Session, docID uuid.UUID,
) error {
	var doc model.Document
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		var err error
		doc, err = uc.participatingDocument(ctx, c, s.Caller, docID)
		return err
	})
	if err != nil {
		return err
	}
	return uc.RevokeDocument(ctx, s, doc)
}

// RevokeDocument asks every participant of doc, other than the caller,
// to revoke its own copies of doc using the configured peers and
// revokes the caller copies too. All revocations run concurrently and
// are awaited, then the first error (if any) is returned.
func (uc *UseCase) RevokeDocument(
	ctx context.Context, s model.Session, doc model.Document,
) error {
	ctx, cancel := context.WithTimeout(ctx, uc.revokeTimeout)
	defer cancel()
	var g errgroup.Group
	if uc.peers != nil {
		for _, p := range doc.Participants() {
			if p == s.Caller {
				continue
			}
			g.Go(func() error {
				err := uc.peers.Revoke(ctx, s, p, doc)
				uc.countRevocation(err)
				if err != nil {
					return fmt.Errorf("revoking copies of %s: %w", p, err)
				}
				return nil
			})
		}
	}
	g.Go(func() error {
		_, err := uc.SelfRevoke(ctx, s, doc)
		uc.countRevocation(err)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error(
			ctx, "revocation failed",
			log.LinearID(doc.DocumentID()), log.Err("err", err),
		)
		return err
	}
	return nil
}

// SelfRevoke revokes exactly those unconsumed copies which are owned
// by the caller and wrap a document identical to doc. It returns the
// number of revoked copies. It is no-op if no such copy exists.
func (uc *UseCase) SelfRevoke(
	ctx context.Context, s model.Session, doc model.Document,
) (n int, err error) {
	if doc == nil {
		return 0, cerr.BadRequest(errors.New("document is missing"))
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		copies, err := uc.published.Conn(c).Owned(
			ctx, s.Caller, doc.DocumentID(),
		)
		if err != nil {
			return fmt.Errorf("listing owned copies: %w", err)
		}
		var inputs []model.State
		var ids []uuid.UUID
		for _, cp := range copies {
			if cp.Wraps(doc) {
				inputs = append(inputs, cp)
				ids = append(ids, cp.ID)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		tx := contract.Transition{
			Commands: []contract.Command{contract.PublishedRevoke},
			Inputs:   inputs,
			Signers:  s.Signers(),
		}
		if err := uc.checker.Verify(ctx, tx, s.Now); err != nil {
			return err
		}
		err = c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.published.Tx(tx).Consume(ctx, ids...)
		})
		if err != nil {
			return err
		}
		n = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info(
			ctx, "published copies are revoked",
			log.LinearID(doc.DocumentID()),
			log.Party("owner", s.Caller),
			slog.Int("count", n),
		)
	}
	return n, nil
}

// Copies lists the unconsumed copies of the docID document which are
// owned by the caller.
func (uc *UseCase) Copies(
	ctx context.Context, s model.Session, docID uuid.UUID,
) (copies []model.Published, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		copies, err = uc.published.Conn(c).Owned(ctx, s.Caller, docID)
		return err
	})
	if err != nil {
		copies = nil
	}
	return
}

func (uc *UseCase) participatingDocument(
	ctx context.Context, c repo.Conn, caller model.Party, docID uuid.UUID,
) (model.Document, error) {
	st, err := uc.vault.Conn(c).Document(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !model.ContainsParty(st.State.Participants(), caller) {
		return nil, cerr.Authorization(pkgerrors.Wrapf(
			ruleerrors.ErrNotParticipant,
			"%s does not participate in %v", caller, docID,
		))
	}
	return st.State, nil
}

func (uc *UseCase) countRevocation(err error) {
	if uc.metrics == nil {
		return
	}
	if err != nil {
		uc.metrics.IncRevocation("failed")
	} else {
		uc.metrics.IncRevocation("revoked")
	}
}
