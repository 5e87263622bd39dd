// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package vaultrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

type gState struct {
	ID           uuid.UUID  `gorm:"primaryKey;type:uuid"`
	Seq          int64      `gorm:"<-:false"`
	Kind         string     `gorm:"not null"`
	LinearID     *uuid.UUID `gorm:"type:uuid"`
	Participants string     `gorm:"type:jsonb;not null"`
	Payload      string     `gorm:"type:jsonb;not null"`
	Consumed     bool       `gorm:"not null"`
}

func (gs *gState) TableName() string {
	return "states"
}

func newGState(s model.State) (gState, error) {
	kind, err := codec.Kind(s)
	if err != nil {
		return gState{}, err
	}
	if kind == codec.KindPublished {
		return gState{}, errors.New("published copies are not vault states")
	}
	payload, err := codec.MarshalState(s)
	if err != nil {
		return gState{}, err
	}
	parties, err := participants(s.Participants()...)
	if err != nil {
		return gState{}, err
	}
	gs := gState{
		ID:           uuid.New(),
		Kind:         kind,
		Participants: parties,
		Payload:      string(payload),
	}
	if doc, ok := s.(model.Document); ok {
		id := doc.DocumentID()
		gs.LinearID = &id
	}
	return gs, nil
}

// participants encodes parties as a JSON array of their names, so the
// jsonb containment operator may find states of a party.
func participants(parties ...model.Party) (string, error) {
	b, err := json.Marshal(parties)
	if err != nil {
		return "", fmt.Errorf("marshaling participants: %w", err)
	}
	return string(b), nil
}

func stored[S model.State](gs gState) (repo.Stored[S], error) {
	s, err := codec.UnmarshalState([]byte(gs.Payload))
	if err != nil {
		return repo.Stored[S]{}, fmt.Errorf("state %v: %w", gs.ID, err)
	}
	ss, ok := s.(S)
	if !ok {
		return repo.Stored[S]{}, fmt.Errorf("state %v is a %T", gs.ID, s)
	}
	return repo.Stored[S]{Ref: gs.ID, State: ss}, nil
}

func Insert(
	ctx context.Context, tx *postgres.Tx, states ...model.State,
) ([]uuid.UUID, error) {
	if len(states) == 0 {
		return nil, nil
	}
	rows := make([]gState, 0, len(states))
	refs := make([]uuid.UUID, 0, len(states))
	for i, s := range states {
		gs, err := newGState(s)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", i, err)
		}
		rows = append(rows, gs)
		refs = append(refs, gs.ID)
	}
	if err := tx.GORM(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("insert: %w", postgres.Translate(err))
	}
	return refs, nil
}

func Consume(ctx context.Context, tx *postgres.Tx, refs ...uuid.UUID) error {
	res := tx.GORM(ctx).Model(&gState{}).Where(
		"id IN ? AND NOT consumed", refs,
	).Update("consumed", true)
	if err := res.Error; err != nil {
		return fmt.Errorf("consume: %w", postgres.Translate(err))
	}
	if n := res.RowsAffected; n != int64(len(refs)) {
		return cerr.Conflict(fmt.Errorf(
			"%d of %d states are already consumed or missing",
			int64(len(refs))-n, len(refs),
		))
	}
	return nil
}

func Document[Q postgres.Queryer](
	ctx context.Context, q Q, linearID uuid.UUID,
) (repo.Stored[model.Document], error) {
	var gs gState
	err := q.GORM(ctx).Where(
		"linear_id = ? AND NOT consumed", linearID,
	).Order("seq DESC").Take(&gs).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.Stored[model.Document]{}, cerr.NotFound(
			fmt.Errorf("document %v", linearID),
		)
	case err != nil:
		return repo.Stored[model.Document]{}, fmt.Errorf("query: %w", err)
	}
	return stored[model.Document](gs)
}

func Documents[Q postgres.Queryer](
	ctx context.Context, q Q, kind model.DocumentKind, participant model.Party,
) ([]repo.Stored[model.Document], error) {
	return find[model.Document](ctx, q, kind.String(), participant)
}

func Tokens[Q postgres.Queryer](
	ctx context.Context, q Q, holder model.Party,
) ([]repo.Stored[model.Token], error) {
	return find[model.Token](ctx, q, codec.KindToken, holder)
}

func find[S model.State, Q postgres.Queryer](
	ctx context.Context, q Q, kind string, participant model.Party,
) ([]repo.Stored[S], error) {
	party, err := participants(participant)
	if err != nil {
		return nil, err
	}
	var rows []gState
	err = q.GORM(ctx).Where(
		"kind = ? AND NOT consumed AND participants @> CAST(? AS jsonb)",
		kind, party,
	).Order("seq").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ss := make([]repo.Stored[S], 0, len(rows))
	for _, gs := range rows {
		s, err := stored[S](gs)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return ss, nil
}
