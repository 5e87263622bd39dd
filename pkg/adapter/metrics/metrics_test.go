// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/adapter/metrics"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

var (
	_ verifyuc.Metrics  = (*metrics.Metrics)(nil)
	_ publishuc.Metrics = (*metrics.Metrics)(nil)
)

func TestCounters(t *testing.T) {
	m := metrics.New(nil)
	m.ObserveVerification("mot.issue", "accepted", time.Millisecond)
	m.ObserveVerification("mot.issue", "accepted", time.Millisecond)
	m.ObserveVerification("tax.issue", "Authorization", time.Millisecond)
	m.IncPublished("REUSE", true)
	m.IncPublished("NEWISSUE", false)
	m.IncRevocation("revoked")
	m.IncRevocation("failed")
	m.IncRevocation("revoked")

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.Verifications.WithLabelValues("mot.issue", "accepted"),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.Verifications.WithLabelValues("tax.issue", "Authorization"),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.Published.WithLabelValues("REUSE", "true"),
	))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.Revocations.WithLabelValues("revoked"),
	))
	assert.Equal(t, 2, testutil.CollectAndCount(m.VerifyLatency))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveVerification("mot.issue", "accepted", time.Second)
		m.IncPublished("REUSE", false)
		m.IncRevocation("revoked")
	})
}

func TestHandler(t *testing.T) {
	m := metrics.New(nil)
	m.IncRevocation("failed")
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `ccweb_revocations_total{outcome="failed"} 1`)
}
