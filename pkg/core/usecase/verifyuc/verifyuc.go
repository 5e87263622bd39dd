// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package verifyuc contains the verification UseCase which checks
// a transition against all contract rules without recording it.
// It is used by the ledger and publish use cases before recording
// a transition and is exposed for offline verification of transitions
// which are prepared by other tools.
package verifyuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/log"
)

// Metrics records the verification outcomes.
type Metrics interface {
	// ObserveVerification records one verification of a transition
	// with the given commands which ended with outcome (accepted or
	// the violation kind) and took d.
	ObserveVerification(commands, outcome string, d time.Duration)
}

// UseCase represents the verification use case.
type UseCase struct {
	verifier *contract.Verifier
	metrics  Metrics
}

// New instantiates a verification use case.
func New(v *contract.Verifier, opts ...Option) (*UseCase, error) {
	if v == nil {
		return nil, errors.New("verifier is nil")
	}
	uc := &UseCase{verifier: v}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return uc, nil
}

// Verifier returns the contract verifier of this use case.
func (uc *UseCase) Verifier() *contract.Verifier {
	return uc.verifier
}

// Verify checks tx at the now time. A nil error is returned if tx is
// valid. Otherwise, a *cerr.Error is returned which wraps the first
// violated rule, having the 403 status code for authorization rules
// and 422 for other rules.
func (uc *UseCase) Verify(
	ctx context.Context, tx contract.Transition, now time.Time,
) error {
	start := time.Now()
	err := uc.verifier.Verify(tx, now)
	cmds := commandNames(tx.Commands)
	outcome := "accepted"
	if err != nil {
		outcome = ruleerrors.KindOf(err).String()
		log.Warn(
			ctx, "transition is rejected",
			slog.String("commands", cmds),
			log.Err("err", err),
		)
	} else {
		log.Debug(ctx, "transition is accepted", slog.String("commands", cmds))
	}
	if uc.metrics != nil {
		uc.metrics.ObserveVerification(cmds, outcome, time.Since(start))
	}
	return Classify(err)
}

// Classify wraps the err rule violation as a *cerr.Error with the
// proper HTTP status code. Authorization violations are mapped to 403
// and all other violations are mapped to 422. Errors which are not
// rule violations, including nil, are returned unchanged.
func Classify(err error) error {
	switch ruleerrors.KindOf(err) {
	case ruleerrors.KindNone:
		return err
	case ruleerrors.Authorization:
		return cerr.Authorization(err)
	default:
		return cerr.Unprocessable(err)
	}
}

func commandNames(cmds []contract.Command) string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			names = append(names, c.String())
		}
	}
	return strings.Join(names, "+")
}
