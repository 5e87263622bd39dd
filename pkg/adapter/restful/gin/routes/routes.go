// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alicer3/car-cordapp/pkg/adapter/config/cfg1"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres/publishedrp"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres/vaultrp"
	"github.com/alicer3/car-cordapp/pkg/adapter/metrics"
	"github.com/alicer3/car-cordapp/pkg/adapter/peer"
	ccgin "github.com/alicer3/car-cordapp/pkg/adapter/restful/gin"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/documentsrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/insurancesrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/motsrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/proposalsrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/publishedrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/taxesrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/transitionsrs"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/walletrs"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

// BasePath is the prefix of all REST APIs.
const BasePath = "/api/ccweb/v1"

// peerTimeout bounds each HTTP revocation request when the publish
// use case has no configured revocation timeout.
const peerTimeout = 30 * time.Second

// UseCases bundles the use cases which are adapted by the resources.
type UseCases struct {
	Ledger  *ledgeruc.UseCase
	Publish *publishuc.UseCase
	Verify  *verifyuc.UseCase

	Faucet      bool              // whether tokens may be deposited
	DefaultMode model.PublishMode // publish mode of mode-less requests
}

// NewUseCases instantiates the verify, publish, and ledger use cases
// based on the c configuration settings. The publish use case revokes
// copies of other parties through a peer.Router which forwards them to
// their nodes (as configured in c.Peers) or to the publish use case
// itself for the parties which are hosted by this node. The ledger use
// case revokes copies of changed documents through the publish use
// case. The m metrics may be nil.
func NewUseCases(
	p repo.Pool, v repo.Vault, pub repo.Published, c *cfg1.Config,
	m *metrics.Metrics,
) (UseCases, error) {
	verifier, err := c.Usecases.Ledger.NewVerifier()
	if err != nil {
		return UseCases{}, fmt.Errorf("creating verifier: %w", err)
	}
	var vopts []verifyuc.Option
	if m != nil {
		vopts = append(vopts, verifyuc.WithMetrics(m))
	}
	verify, err := verifyuc.New(verifier, vopts...)
	if err != nil {
		return UseCases{}, fmt.Errorf("creating verify use case: %w", err)
	}
	timeout := peerTimeout
	if rt := c.Usecases.Publish.RevocationTimeout; rt != nil {
		timeout = time.Duration(*rt)
	}
	router := peer.New(c.PeerURLs(), timeout)
	var pm publishuc.Metrics
	if m != nil {
		pm = m
	}
	publish, err := c.Usecases.Publish.NewUseCase(
		p, v, pub, verify, router, pm,
	)
	if err != nil {
		return UseCases{}, fmt.Errorf("creating publish use case: %w", err)
	}
	router.SetLocal(publish)
	ledger, err := c.Usecases.Ledger.NewUseCase(p, v, pub, verify, publish)
	if err != nil {
		return UseCases{}, fmt.Errorf("creating ledger use case: %w", err)
	}
	return UseCases{
		Ledger:      ledger,
		Publish:     publish,
		Verify:      verify,
		Faucet:      *c.Usecases.Ledger.Faucet,
		DefaultMode: c.Usecases.Publish.Mode(),
	}, nil
}

// Mount registers the resources which adapt uc under the BasePath of
// the e gin-gonic engine.
func Mount(e *gin.Engine, uc UseCases) {
	r := e.Group(BasePath)
	proposalsrs.Register(r, uc.Ledger)
	motsrs.Register(r, uc.Ledger)
	insurancesrs.Register(r, uc.Ledger)
	taxesrs.Register(r, uc.Ledger)
	documentsrs.Register(r, uc.Ledger)
	walletrs.Register(r, uc.Ledger, uc.Faucet)
	publishedrs.Register(r, uc.Publish, uc.DefaultMode)
	transitionsrs.Register(r, uc.Verify)
}

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like ledgeruc and each repository package is named like vaultrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like proposalsrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
// When metrics are enabled, they are exposed by e too.
func Register(
	ctx context.Context, e *gin.Engine, p repo.Pool, c *cfg1.Config,
) error {
	var m *metrics.Metrics
	if *c.Metrics.Enabled {
		m = metrics.New(nil)
		ccgin.Mount(e, c.Metrics.Path, m.Handler())
	}
	uc, err := NewUseCases(p, vaultrp.New(), publishedrp.New(), c, m)
	if err != nil {
		return err
	}
	Mount(e, uc)
	log.Info(
		ctx, "routes are registered",
		slog.String("base", BasePath),
		slog.Bool("metrics", m != nil),
		slog.Bool("faucet", uc.Faucet),
	)
	return nil
}
