// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package publishedrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

type gCopy struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Seq         int64     `gorm:"<-:false"`
	Owner       string    `gorm:"not null"`
	DocKind     string    `gorm:"not null"`
	DocLinearID uuid.UUID `gorm:"type:uuid;not null"`
	Payload     string    `gorm:"type:jsonb;not null"`
	Consumed    bool      `gorm:"not null"`
}

func (gc *gCopy) TableName() string {
	return "published_copies"
}

func (gc *gCopy) Model() (model.Published, error) {
	s, err := codec.UnmarshalState([]byte(gc.Payload))
	if err != nil {
		return model.Published{}, fmt.Errorf("copy %v: %w", gc.ID, err)
	}
	p, ok := s.(model.Published)
	if !ok {
		return model.Published{}, fmt.Errorf("copy %v is a %T", gc.ID, s)
	}
	return p, nil
}

func Insert(ctx context.Context, tx *postgres.Tx, p model.Published) error {
	if p.Doc == nil {
		return errors.New("published copy wraps nothing")
	}
	payload, err := codec.MarshalState(p)
	if err != nil {
		return err
	}
	gc := gCopy{
		ID:          p.ID,
		Owner:       p.Owner.String(),
		DocKind:     p.Doc.Kind().String(),
		DocLinearID: p.Doc.DocumentID(),
		Payload:     string(payload),
	}
	if err = tx.GORM(ctx).Create(&gc).Error; err != nil {
		return fmt.Errorf("insert: %w", postgres.Translate(err))
	}
	return nil
}

func Consume(ctx context.Context, tx *postgres.Tx, ids ...uuid.UUID) error {
	res := tx.GORM(ctx).Model(&gCopy{}).Where(
		"id IN ? AND NOT consumed", ids,
	).Update("consumed", true)
	if err := res.Error; err != nil {
		return fmt.Errorf("consume: %w", postgres.Translate(err))
	}
	if n := res.RowsAffected; n != int64(len(ids)) {
		return cerr.Conflict(fmt.Errorf(
			"%d of %d copies are already consumed or missing",
			int64(len(ids))-n, len(ids),
		))
	}
	return nil
}

func Find[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (model.Published, error) {
	var gc gCopy
	err := q.GORM(ctx).Where("id = ? AND NOT consumed", id).Take(&gc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Published{}, cerr.NotFound(fmt.Errorf("copy %v", id))
	case err != nil:
		return model.Published{}, fmt.Errorf("query: %w", err)
	}
	return gc.Model()
}

func Owned[Q postgres.Queryer](
	ctx context.Context, q Q, owner model.Party, docID uuid.UUID,
) ([]model.Published, error) {
	var rows []gCopy
	err := q.GORM(ctx).Where(
		"owner = ? AND doc_linear_id = ? AND NOT consumed",
		owner.String(), docID,
	).Order("seq").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	copies := make([]model.Published, 0, len(rows))
	for _, gc := range rows {
		p, err := gc.Model()
		if err != nil {
			return nil, err
		}
		copies = append(copies, p)
	}
	return copies, nil
}
