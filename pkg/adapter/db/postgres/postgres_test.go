// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/alicer3/car-cordapp/internal/test/dbcontainer"
	"github.com/alicer3/car-cordapp/internal/test/schema"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres/publishedrp"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres/schemarp"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres/vaultrp"
	"github.com/alicer3/car-cordapp/pkg/adapter/hash/scram"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

var (
	tester = model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	owner  = model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
	bob    = model.Party{Organisation: "Bob", Locality: "Bristol", Country: "GB"}

	vehicle = model.Vehicle{
		ID:             7,
		RegistrationNo: "AB12 CDE",
		Country:        "GB",
		Model:          "Civic",
		Category:       "M1",
		Mileage:        42000,
	}
)


type VaultTestSuite struct {
	suite.Suite
	Ctx  context.Context
	Pool *postgres.Pool

	vault     *vaultrp.Repo
	published *publishedrp.Repo
}

func TestVaultTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &VaultTestSuite{
		Ctx:       ctx,
		Pool:      pool,
		vault:     vaultrp.New(),
		published: publishedrp.New(),
	})
}

func (vts *VaultTestSuite) SetupSuite() {
	sch := schemarp.New("_test", scram.SHA256())
	vts.tx(func(ctx context.Context, tx repo.Tx) error {
		return sch.Tx(tx).CreateTables(ctx, "public")
	})
}

func (vts *VaultTestSuite) SetupTest() {
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, "TRUNCATE states, published_copies")
		return err
	})
}

func (vts *VaultTestSuite) conn(f repo.ConnHandler) {
	vts.Require().NoError(vts.Pool.Conn(vts.Ctx, f))
}

func (vts *VaultTestSuite) tx(f repo.TxHandler) {
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, f)
	})
}

func (vts *VaultTestSuite) TestSchema() {
	sch := schemarp.New("_test", scram.SHA256())
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		q := sch.Conn(c)
		vts.Require().NoError(q.DropIfExists(ctx, "vault"))
		vts.Require().NoError(q.CreateSchema(ctx, "vault"))
		vts.Require().NoError(q.CreateRoleIfNotExists(ctx, repo.NormalRole))
		vts.Require().NoError(q.CreateRoleIfNotExists(ctx, repo.NormalRole))
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := sch.Tx(tx)
			vts.Require().NoError(q.CreateTables(ctx, "vault"))
			vts.Require().NoError(q.GrantPrivileges(ctx, "vault", repo.NormalRole))
			vts.Require().NoError(q.SetSearchPath(ctx, "vault", repo.NormalRole))
			return q.ChangePasswords(
				ctx, []repo.Role{repo.NormalRole}, []string{"secret"},
			)
		})
	})
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		schema.Verify(ctx, vts.T(), c, "vault")
		schema.Verify(ctx, vts.T(), c, "public")
		rows, err := c.Query(ctx,
			"SELECT rolpassword FROM pg_authid WHERE rolname = $1",
			string(repo.NormalRole)+"_test",
		)
		vts.Require().NoError(err)
		defer rows.Close()
		vts.Require().True(rows.Next(), "role is created")
		var hash string
		vts.Require().NoError(rows.Scan(&hash))
		vts.Regexp(`^SCRAM-SHA-256\$15000:`, hash)
		return rows.Err()
	})
	err := vts.Pool.Conn(vts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return sch.Tx(tx).ChangePasswords(ctx, []repo.Role{"x"}, nil)
		})
	})
	vts.Error(err, "mismatched passwords")
}

func (vts *VaultTestSuite) TestStatesLifecycle() {
	p := model.Proposal{
		Tester:      tester,
		Owner:       owner,
		Vehicle:     vehicle,
		Price:       model.GBP(100),
		Status:      model.StatusDraft,
		ActionParty: tester,
		LinearID:    uuid.New(),
	}
	agreed := p
	agreed.Status = model.StatusAgreed
	var refs []uuid.UUID
	vts.tx(func(ctx context.Context, tx repo.Tx) (err error) {
		refs, err = vts.vault.Tx(tx).Insert(ctx,
			p, model.Token{Holder: owner, Amount: model.GBP(50)},
		)
		return err
	})
	vts.Require().Len(refs, 2)

	vts.conn(func(ctx context.Context, c repo.Conn) error {
		q := vts.vault.Conn(c)
		doc, err := q.Document(ctx, p.LinearID)
		vts.Require().NoError(err)
		vts.Equal(refs[0], doc.Ref)
		vts.Equal(p, doc.State)

		docs, err := q.Documents(ctx, model.DocumentKindProposal, tester)
		vts.Require().NoError(err)
		vts.Len(docs, 1)
		docs, err = q.Documents(ctx, model.DocumentKindProposal, bob)
		vts.Require().NoError(err)
		vts.Empty(docs, "bob is not a participant")

		tokens, err := q.Tokens(ctx, owner)
		vts.Require().NoError(err)
		vts.Require().Len(tokens, 1)
		vts.Equal(model.GBP(50), tokens[0].State.Amount)
		return nil
	})

	vts.tx(func(ctx context.Context, tx repo.Tx) error {
		q := vts.vault.Tx(tx)
		if err := q.Consume(ctx, refs[0]); err != nil {
			return err
		}
		_, err := q.Insert(ctx, agreed)
		return err
	})
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		doc, err := vts.vault.Conn(c).Document(ctx, p.LinearID)
		vts.Require().NoError(err)
		vts.Equal(agreed, doc.State, "latest unconsumed state is found")
		_, err = vts.vault.Conn(c).Document(ctx, uuid.New())
		vts.Equal(http.StatusNotFound, cerr.StatusCode(err), "%+v", err)
		return nil
	})

	err := vts.Pool.Conn(vts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return vts.vault.Tx(tx).Consume(ctx, refs...)
		})
	})
	vts.Equal(http.StatusConflict, cerr.StatusCode(err), "double spend: %+v", err)
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		tokens, err := vts.vault.Conn(c).Tokens(ctx, owner)
		vts.Require().NoError(err)
		vts.Len(tokens, 1, "failed consumption is rolled back")
		return nil
	})
}

func (vts *VaultTestSuite) TestPublishedCopies() {
	m := model.MOT{
		TestDate:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Location:   "Leeds",
		Tester:     tester,
		Vehicle:    vehicle,
		Owner:      owner,
		Result:     true,
		LinearID:   uuid.New(),
	}
	first := model.Published{ID: uuid.New(), Doc: m, Owner: owner}
	second := model.Published{ID: uuid.New(), Doc: m, Owner: owner}
	vts.tx(func(ctx context.Context, tx repo.Tx) error {
		q := vts.published.Tx(tx)
		if err := q.Insert(ctx, first); err != nil {
			return err
		}
		return q.Insert(ctx, second)
	})
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		q := vts.published.Conn(c)
		p, err := q.Find(ctx, first.ID)
		vts.Require().NoError(err)
		vts.Equal(first, p)
		owned, err := q.Owned(ctx, owner, m.LinearID)
		vts.Require().NoError(err)
		vts.Equal([]model.Published{first, second}, owned)
		owned, err = q.Owned(ctx, tester, m.LinearID)
		vts.Require().NoError(err)
		vts.Empty(owned)
		return nil
	})
	vts.tx(func(ctx context.Context, tx repo.Tx) error {
		return vts.published.Tx(tx).Consume(ctx, first.ID)
	})
	vts.conn(func(ctx context.Context, c repo.Conn) error {
		_, err := vts.published.Conn(c).Find(ctx, first.ID)
		vts.Equal(http.StatusNotFound, cerr.StatusCode(err), "%+v", err)
		return nil
	})
	err := vts.Pool.Conn(vts.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return vts.published.Tx(tx).Insert(ctx, second)
		})
	})
	vts.Equal(http.StatusConflict, cerr.StatusCode(err), "duplicate id: %+v", err)
}
