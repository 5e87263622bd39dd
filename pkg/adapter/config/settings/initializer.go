// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings contains the helpers which are shared by the config
// versions for parsing, normalizing, and range checking of settings.
package settings

// Nil2Zero makes a nil (*t) point to a fresh zero T, so optional
// settings which default to their zero value (like a false flag) need
// no nil checks afterwards. A non-nil (*t) is kept as is.
func Nil2Zero[T any](t **T) {
	if *t == nil {
		*t = new(T)
	}
}
