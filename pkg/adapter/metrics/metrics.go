// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package metrics records the verification, publication, and
// revocation outcomes as prometheus metrics. A *Metrics implements
// both of the verifyuc.Metrics and publishuc.Metrics interfaces.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes all metric names.
const Namespace = "ccweb"

// Metrics holds the registered collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Verifications *prometheus.CounterVec
	VerifyLatency *prometheus.HistogramVec
	Published     *prometheus.CounterVec
	Revocations   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors in reg. Passing a nil reg creates a
// fresh registry, so several instances may coexist in tests.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "verifications_total",
			Help:      "Verified transitions by commands and outcome",
		}, []string{"commands", "outcome"}),
		VerifyLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "verification_duration_seconds",
			Help:      "Duration of transition verifications by commands",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
		}, []string{"commands"}),
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "published_copies_total",
			Help:      "Published copies by mode and whether a copy was reused",
		}, []string{"mode", "reused"}),
		Revocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "revocations_total",
			Help:      "Revocation requests by outcome",
		}, []string{"outcome"}),
		gatherer: reg,
	}
}

// ObserveVerification records one verification.
func (m *Metrics) ObserveVerification(
	commands, outcome string, d time.Duration,
) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(commands, outcome).Inc()
	m.VerifyLatency.WithLabelValues(commands).Observe(d.Seconds())
}

// IncPublished records one publication.
func (m *Metrics) IncPublished(mode string, reused bool) {
	if m != nil {
		m.Published.WithLabelValues(mode, strconv.FormatBool(reused)).Inc()
	}
}

// IncRevocation records one revocation request.
func (m *Metrics) IncRevocation(outcome string) {
	if m != nil {
		m.Revocations.WithLabelValues(outcome).Inc()
	}
}

// Handler serves the registered metrics in the prometheus exposition
// format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(
			prometheus.NewRegistry(), promhttp.HandlerOpts{},
		)
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
