// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import (
	"fmt"

	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// MismatchingSemVerError indicates that a configuration file or a
// database schema has another semantic version than the supported one.
// The first element is the expected version and the second element is
// the actual version.
type MismatchingSemVerError [2]model.SemVer

// Error returns a string representation of `msve` error instance.
func (msve *MismatchingSemVerError) Error() string {
	return fmt.Sprintf(
		"expected v%s, but got v%s", msve[0].String(), msve[1].String(),
	)
}
