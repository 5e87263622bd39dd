// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Duration is a time.Duration which is read from and written to the
// configuration files in the time.ParseDuration format, like 30s.
type Duration time.Duration

// String formats d like time.Duration, but drops the zero minutes and
// seconds suffixes, so one hour is written as 1h instead of 1h0m0s.
// The zero duration is written as 0s.
func (d Duration) String() string {
	s := time.Duration(d).String()
	for _, zero := range []string{"m0s", "h0m"} {
		if strings.HasSuffix(s, zero) {
			s = s[:len(s)-2]
		}
	}
	return s
}

// UnmarshalText parses data with time.ParseDuration. The `d` is kept
// unchanged if data is malformed.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Marshal returns the String form of d in a newly allocated variable,
// or nil if d is nil. The Marshalled forms of the config versions use
// it in order to omit the unset durations.
func (d *Duration) Marshal() *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// MarshalText implements encoding.TextMarshaler using the String form.
func (d *Duration) MarshalText() ([]byte, error) {
	if d == nil {
		return nil, errors.New("nil duration")
	}
	return []byte(d.String()), nil
}

// LogValue implements slog.LogValuer.
func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("nil-duration")
	}
	return slog.DurationValue(time.Duration(*d))
}
