// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ledgeruc

import (
	"errors"
	"fmt"

	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Option is a functional option for the ledger use case.
type Option func(uc *UseCase) error

// WithRevoker option configures how published copies of updated or
// cancelled documents are revoked. Without a revoker, such copies are
// kept until their owners revoke them explicitly.
func WithRevoker(r Revoker) Option {
	return func(uc *UseCase) error {
		if r == nil {
			return errors.New("revoker is nil")
		}
		if uc.revoker != nil {
			return errors.New("revoker is already configured")
		}
		uc.revoker = r
		return nil
	}
}

// WithCounterOfferPolicy option enforces the direction of price
// updates of agreed proposals and policies. When enabled, the vehicle
// owner may only decrease a price and the tester or insurer may only
// increase it.
func WithCounterOfferPolicy(enabled bool) Option {
	return func(uc *UseCase) error {
		if uc.counterOffers {
			return errors.New("counter-offer policy is already configured")
		}
		uc.counterOffers = enabled
		return nil
	}
}

// WithTaxAuthority option configures the organisation name of the
// party which may issue road tax records.
func WithTaxAuthority(org string) Option {
	return func(uc *UseCase) error {
		if org == "" {
			return errors.New("tax authority organisation is empty")
		}
		if uc.taxAuthority != "" {
			return errors.New("tax authority is already configured")
		}
		uc.taxAuthority = org
		return nil
	}
}

// WithTaxPrice option configures the price of road tax records.
func WithTaxPrice(price model.Amount) Option {
	return func(uc *UseCase) error {
		if !price.IsPositive() {
			return fmt.Errorf("tax price (%v) is not positive", price)
		}
		if uc.taxPrice != (model.Amount{}) {
			return errors.New("tax price is already configured")
		}
		uc.taxPrice = price
		return nil
	}
}
