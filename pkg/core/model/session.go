// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"
)

// Session describes who runs a use case and when. The Caller initiates
// the transition while Cosigners lists the counterparties which have
// approved it. The Now time is used for all temporal checks of that
// use case, so a use case never reads the wall clock itself.
type Session struct {
	Caller    Party
	Cosigners []Party
	Now       time.Time
}

// Signers returns the caller followed by its distinct cosigners.
func (s Session) Signers() []Party {
	signers := []Party{s.Caller}
	for _, p := range s.Cosigners {
		if !ContainsParty(signers, p) {
			signers = append(signers, p)
		}
	}
	return signers
}
