// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// OutOfRangeError reports a setting which was outside of its optional
// [Min, Max] boundaries, or boundaries whose Min exceeds their Max.
type OutOfRangeError[T cmp.Ordered] struct {
	Value    *T // original value, nil if InvalidRange is true
	Min, Max *T // boundaries, nil for an unbounded side

	LessThanMin  bool // Value was below Min
	InvalidRange bool // Min was greater than Max
}

// Error implements the error interface.
func (e *OutOfRangeError[T]) Error() string {
	switch {
	case e.InvalidRange:
		return fmt.Sprintf("minimum %v exceeds maximum %v", *e.Min, *e.Max)
	case e.LessThanMin:
		return fmt.Sprintf("%v is less than minimum %v", *e.Value, *e.Min)
	default:
		return fmt.Sprintf("%v is greater than maximum %v", *e.Value, *e.Max)
	}
}

// VerifyRange checks that the (*value) setting is nil or falls within
// the minb and maxb boundaries. A nil boundary leaves that side open.
// An out of range value is clamped to the violated boundary and the
// returned error keeps a copy of its original value.
func VerifyRange[T cmp.Ordered](
	value **T, minb, maxb *T,
) *OutOfRangeError[T] {
	if minb != nil && maxb != nil && *minb > *maxb {
		return &OutOfRangeError[T]{
			Min: minb, Max: maxb, InvalidRange: true,
		}
	}
	if *value == nil {
		return nil
	}
	v := **value
	clamped := v
	if minb != nil {
		clamped = max(clamped, *minb)
	}
	if maxb != nil {
		clamped = min(clamped, *maxb)
	}
	if clamped == v {
		return nil
	}
	**value = clamped
	return &OutOfRangeError[T]{
		Value: &v, Min: minb, Max: maxb, LessThanMin: clamped > v,
	}
}
