// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is anything which may be consumed or produced by a transition,
// i.e., documents, published copies, and escrow tokens.
type State interface {
	// Participants returns the parties which are interested in the
	// state and keep it in their records.
	Participants() []Party
}

// Document is a certification record which evolves by transitions.
// All versions of one document share the same LinearID.
type Document interface {
	State

	// DocumentID returns the linear id of the document.
	DocumentID() uuid.UUID

	// Kind returns the document type.
	Kind() DocumentKind
}

// DocumentKind enumerates the document types.
type DocumentKind int

// Valid values for the DocumentKind enum.
const (
	DocumentKindInvalid DocumentKind = iota // zero value is invalid

	DocumentKindProposal
	DocumentKindMOT
	DocumentKindInsurance
	DocumentKindTax
)

// ErrUnknownDocumentKind indicates that a string is not a known kind.
var ErrUnknownDocumentKind = errors.New("unknown document kind")

// String converts the DocumentKind enum to a string. Invalid kinds
// cause a panic.
func (k DocumentKind) String() string {
	switch k {
	case DocumentKindProposal:
		return "proposal"
	case DocumentKindMOT:
		return "mot"
	case DocumentKindInsurance:
		return "insurance"
	case DocumentKindTax:
		return "tax"
	default:
		panic(fmt.Sprintf("invalid document kind: %d", int(k)))
	}
}

// ParseDocumentKind parses the given string as a DocumentKind.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch s {
	case "proposal":
		return DocumentKindProposal, nil
	case "mot":
		return DocumentKindMOT, nil
	case "insurance":
		return DocumentKindInsurance, nil
	case "tax":
		return DocumentKindTax, nil
	default:
		return DocumentKindInvalid, ErrUnknownDocumentKind
	}
}

// SameDocument reports whether a and b are identical documents, i.e.,
// they have the same type and all of their fields are equal. Time
// fields are compared as instants, so their locations do not matter.
func SameDocument(a, b Document) bool {
	switch x := a.(type) {
	case Proposal:
		y, ok := b.(Proposal)
		return ok && x == y
	case MOT:
		y, ok := b.(MOT)
		return ok && x.Equal(y)
	case Insurance:
		y, ok := b.(Insurance)
		return ok && x.Equal(y)
	case Tax:
		y, ok := b.(Tax)
		return ok && x.Equal(y)
	default:
		return false
	}
}

// StartOfDay truncates t to the midnight which begins its day in UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
