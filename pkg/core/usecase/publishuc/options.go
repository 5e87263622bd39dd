// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package publishuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the publish use case.
type Option func(uc *UseCase) error

// WithPeers option configures how other participants are asked to
// revoke their copies of a document.
func WithPeers(p Peers) Option {
	return func(uc *UseCase) error {
		if p == nil {
			return errors.New("peers is nil")
		}
		if uc.peers != nil {
			return errors.New("peers are already configured")
		}
		uc.peers = p
		return nil
	}
}

// WithMetrics option records publish and revoke outcomes using m.
func WithMetrics(m Metrics) Option {
	return func(uc *UseCase) error {
		if m == nil {
			return errors.New("metrics is nil")
		}
		if uc.metrics != nil {
			return errors.New("metrics is already configured")
		}
		uc.metrics = m
		return nil
	}
}

// WithRevocationTimeout option limits the total duration of each
// RevokeDocument call, including the time spent waiting for peers.
func WithRevocationTimeout(d time.Duration) Option {
	return func(uc *UseCase) error {
		if d <= 0 {
			return fmt.Errorf("timeout (%v) is not positive", d)
		}
		if uc.revokeTimeout != 0 {
			return errors.New("revocation timeout is already configured")
		}
		uc.revokeTimeout = d
		return nil
	}
}
