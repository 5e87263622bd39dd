// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a released semantic version as major, minor, and patch
// numbers. It versions the configuration files and the vault tables.
type SemVer [3]uint

// UnmarshalText parses text as one to three dot-separated non-negative
// numbers, like 1.0.0 or 1.2, where the missing components are zero.
// The sv is kept unchanged on errors.
func (sv *SemVer) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ".")
	if len(parts) > 3 {
		return fmt.Errorf("the %q has too many components", text)
	}
	var v SemVer
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return fmt.Errorf("the %q component is not numeric", p)
		}
		v[i] = uint(n)
	}
	*sv = v
	return nil
}

// Marshal returns the String form of sv for the YAML encoding.
func (sv *SemVer) Marshal() string {
	return sv.String()
}

func (sv *SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}
