// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package verifyuc

import (
	"errors"
)

// Option is a functional option for the verification use case.
type Option func(uc *UseCase) error

// WithMetrics option records the outcome and latency of every
// verification using m.
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
