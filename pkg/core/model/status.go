// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"strings"
)

// Status specifies the lifecycle status of the status-bearing documents,
// i.e., Proposal and Insurance. Although this enum is numeric, it is
// (de)serialized as an upper case string for readability.
//
// Valid transitions form a lattice:
//
//	DRAFT -> PENDING -> AGREED -> {ISSUED | PAID -> consumed}
//
// where PENDING may loop on itself (counter-offers), REJECTED is an
// absorbing exit from PENDING, and cancellation of an AGREED document
// consumes it without any successor.
type Status int

// Valid values for the Status enum.
const (
	StatusInvalid Status = iota // zero value is invalid

	StatusDraft    // created but not shared with the counterparty
	StatusPending  // offered, waiting for the action-party
	StatusRejected // refused by the action-party
	StatusAgreed   // accepted by both participants
	StatusPaid     // proposal price is paid to the tester
	StatusIssued   // insurance policy is paid and in force
)

// ErrUnknownStatus indicates that a given string may not be parsed
// as a valid/known status. Caller of ParseStatus already knows about
// the invalid string, so it is not repeated in the error.
var ErrUnknownStatus = errors.New("unknown status")

// StatusError indicates an invalid numeric status.
type StatusError int

// Error implements the error interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("invalid status: %d", e)
}

// Validate returns nil if the Status value is valid. For invalid
// values, an instance of the StatusError will be returned.
func (s Status) Validate() error {
	switch s {
	case StatusDraft, StatusPending, StatusRejected,
		StatusAgreed, StatusPaid, StatusIssued:
		return nil
	default:
		return StatusError(s)
	}
}

// String converts the Status enum to a string. Invalid statuses cause
// a panic.
func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPending:
		return "PENDING"
	case StatusRejected:
		return "REJECTED"
	case StatusAgreed:
		return "AGREED"
	case StatusPaid:
		return "PAID"
	case StatusIssued:
		return "ISSUED"
	default:
		panic(StatusError(s))
	}
}

// ParseStatus parses the given string (case-insensitively) and returns
// a Status. For invalid strings, StatusInvalid and ErrUnknownStatus
// will be returned.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(s) {
	case "DRAFT":
		return StatusDraft, nil
	case "PENDING":
		return StatusPending, nil
	case "REJECTED":
		return StatusRejected, nil
	case "AGREED":
		return StatusAgreed, nil
	case "PAID":
		return StatusPaid, nil
	case "ISSUED":
		return StatusIssued, nil
	default:
		return StatusInvalid, ErrUnknownStatus
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return fmt.Errorf("%q: %w", text, err)
	}
	*s = st
	return nil
}
