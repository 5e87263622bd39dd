// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"

	"github.com/google/uuid"
)

// Published is a copy of a document which its Owner exposes to a
// counterparty, so the counterparty may verify facts about the document
// without taking its custody. Each copy has its own ID and several
// copies of one document may coexist. A copy is consumed by the
// transition which relies on it, or revoked by its owner.
type Published struct {
	ID    uuid.UUID
	Doc   Document
	Owner Party
}

// Participants returns the publishing owner alone.
func (p Published) Participants() []Party {
	return []Party{p.Owner}
}

// Wraps reports whether p is a copy of a document identical to doc.
func (p Published) Wraps(doc Document) bool {
	return p.Doc != nil && SameDocument(p.Doc, doc)
}

// PublishMode specifies how a publish request should treat existing
// copies.
type PublishMode int

// Valid values for the PublishMode enum.
const (
	PublishModeInvalid PublishMode = iota // zero value is invalid

	PublishModeNewIssue // always create a fresh copy
	PublishModeReuse    // return an identical unconsumed copy if any
)

// ErrUnknownPublishMode indicates an unknown publish mode string.
var ErrUnknownPublishMode = errors.New("unknown publish mode")

// String converts the PublishMode enum to a string. Invalid modes
// cause a panic.
func (m PublishMode) String() string {
	switch m {
	case PublishModeNewIssue:
		return "NEWISSUE"
	case PublishModeReuse:
		return "REUSE"
	default:
		panic(ErrUnknownPublishMode)
	}
}

// ParsePublishMode parses NEWISSUE or REUSE strings.
func ParsePublishMode(s string) (PublishMode, error) {
	switch s {
	case "NEWISSUE":
		return PublishModeNewIssue, nil
	case "REUSE":
		return PublishModeReuse, nil
	default:
		return PublishModeInvalid, ErrUnknownPublishMode
	}
}
