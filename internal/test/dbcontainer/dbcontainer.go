// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer starts a temporary postgres:16 container for the
// integration test suites and connects a *postgres.Pool to it.
//
// A docker compatible daemon is required. For podman, start the
// podman.service and export DOCKER_HOST like
// unix://$XDG_RUNTIME_DIR/podman/podman.sock beforehand. The suites
// are skipped when the container cannot be started.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
)

// DBMSVersion is the tag of the started postgres image.
const DBMSVersion = "16"

// New starts a postgres container and connects to it. The timeout
// only bounds the start up phase while ctx is used for the shutdown
// too. Returned dfrs must be called (in order) by the caller, even if
// ok is false.
func New(ctx context.Context, timeout time.Duration, t *testing.T) (
	pg *sqltestutil.PostgresContainer,
	pool *postgres.Pool,
	dfrs []func(),
	ok bool,
) {
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pg, err := sqltestutil.StartPostgresContainer(ctx2, DBMSVersion)
	if err != nil {
		t.Skipf("no postgres container: %v", err)
		return
	}
	dfrs = append(dfrs, func() {
		err := pg.Shutdown(ctx)
		assert.NoError(t, err, "failed to shutdown test database")
	})
	if pool, ok = connect(ctx2, t, pg.ConnectionString()); !ok {
		return
	}
	dfrs = append(dfrs, func() {
		err := pool.Close()
		assert.NoError(t, err, "failed to close the connections pool")
	})
	return
}

// connect retries while the server is starting up or refuses the
// connections, until ctx expires.
func connect(
	ctx context.Context, t *testing.T, url string,
) (*postgres.Pool, bool) {
	for {
		pool, err := postgres.NewPool(ctx, url)
		if err == nil {
			return pool, true
		}
		var pgErr *pgconn.PgError
		var netErr net.Error
		switch {
		case errors.As(err, &pgErr) && pgErr.SQLState() == "57P03":
		case ctx.Err() == nil && errors.As(err, &netErr):
		default:
			return nil, assert.NoError(t, err, "cannot connect to test database")
		}
		time.Sleep(100 * time.Millisecond)
	}
}
