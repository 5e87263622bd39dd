// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package contract

import (
	"errors"
	"fmt"
)

// Command is the intent of a transition regarding one document type.
// The set of commands is closed. Each document type has its own enum
// type, namely, ProposalCommand, MOTCommand, InsuranceCommand,
// TaxCommand, and PublishedCommand, and other packages may not add
// more implementations.
type Command interface {
	fmt.Stringer

	contract() contractKind
}

// contractKind identifies the contracts. The verification runs them
// in the order of their values.
type contractKind int

const (
	contractProposal contractKind = iota + 1
	contractMOT
	contractInsurance
	contractTax
	contractPublished
)

var contractKinds = []contractKind{
	contractProposal,
	contractMOT,
	contractInsurance,
	contractTax,
	contractPublished,
}

// ErrUnknownCommandName indicates that a command name could not be
// parsed by the ParseCommand function.
var ErrUnknownCommandName = errors.New("unknown command name")

// ProposalCommand enumerates the commands of the MOT proposal
// negotiation.
type ProposalCommand int

// Valid values for the ProposalCommand enum.
const (
	ProposalDraft ProposalCommand = iota + 1
	ProposalDistribute
	ProposalAgree
	ProposalReject
	ProposalUpdate
	ProposalCancel
	ProposalPay
	ProposalConsume
)

func (c ProposalCommand) contract() contractKind {
	return contractProposal
}

// String returns the command name, e.g., proposal.draft.
func (c ProposalCommand) String() string {
	switch c {
	case ProposalDraft:
		return "proposal.draft"
	case ProposalDistribute:
		return "proposal.distribute"
	case ProposalAgree:
		return "proposal.agree"
	case ProposalReject:
		return "proposal.reject"
	case ProposalUpdate:
		return "proposal.update"
	case ProposalCancel:
		return "proposal.cancel"
	case ProposalPay:
		return "proposal.pay"
	case ProposalConsume:
		return "proposal.consume"
	default:
		panic(fmt.Sprintf("invalid proposal command: %d", int(c)))
	}
}

// MOTCommand enumerates the commands of the MOT test records.
type MOTCommand int

// Valid values for the MOTCommand enum.
const (
	MOTIssue MOTCommand = iota + 1
	MOTUpdate
	MOTCancel
)

func (c MOTCommand) contract() contractKind {
	return contractMOT
}

// String returns the command name, e.g., mot.issue.
func (c MOTCommand) String() string {
	switch c {
	case MOTIssue:
		return "mot.issue"
	case MOTUpdate:
		return "mot.update"
	case MOTCancel:
		return "mot.cancel"
	default:
		panic(fmt.Sprintf("invalid mot command: %d", int(c)))
	}
}

// InsuranceCommand enumerates the commands of insurance policies.
type InsuranceCommand int

// Valid values for the InsuranceCommand enum.
const (
	InsuranceDraft InsuranceCommand = iota + 1
	InsuranceDistribute
	InsuranceAgree
	InsuranceReject
	InsuranceUpdate
	InsuranceCancel
	InsuranceIssue
)

func (c InsuranceCommand) contract() contractKind {
	return contractInsurance
}

// String returns the command name, e.g., insurance.issue.
func (c InsuranceCommand) String() string {
	switch c {
	case InsuranceDraft:
		return "insurance.draft"
	case InsuranceDistribute:
		return "insurance.distribute"
	case InsuranceAgree:
		return "insurance.agree"
	case InsuranceReject:
		return "insurance.reject"
	case InsuranceUpdate:
		return "insurance.update"
	case InsuranceCancel:
		return "insurance.cancel"
	case InsuranceIssue:
		return "insurance.issue"
	default:
		panic(fmt.Sprintf("invalid insurance command: %d", int(c)))
	}
}

// TaxCommand enumerates the commands of road tax records.
type TaxCommand int

// Valid values for the TaxCommand enum.
const (
	TaxIssue TaxCommand = iota + 1
	TaxUpdate
	TaxCancel
)

func (c TaxCommand) contract() contractKind {
	return contractTax
}

// String returns the command name, e.g., tax.issue.
func (c TaxCommand) String() string {
	switch c {
	case TaxIssue:
		return "tax.issue"
	case TaxUpdate:
		return "tax.update"
	case TaxCancel:
		return "tax.cancel"
	default:
		panic(fmt.Sprintf("invalid tax command: %d", int(c)))
	}
}

// PublishedCommand enumerates the commands of published copies.
type PublishedCommand int

// Valid values for the PublishedCommand enum.
const (
	PublishedIssue PublishedCommand = iota + 1
	PublishedConsume
	PublishedRevoke
)

func (c PublishedCommand) contract() contractKind {
	return contractPublished
}

// String returns the command name, e.g., published.revoke.
func (c PublishedCommand) String() string {
	switch c {
	case PublishedIssue:
		return "published.issue"
	case PublishedConsume:
		return "published.consume"
	case PublishedRevoke:
		return "published.revoke"
	default:
		panic(fmt.Sprintf("invalid published command: %d", int(c)))
	}
}

var commandsByName = func() map[string]Command {
	cmds := []Command{
		ProposalDraft, ProposalDistribute, ProposalAgree, ProposalReject,
		ProposalUpdate, ProposalCancel, ProposalPay, ProposalConsume,
		MOTIssue, MOTUpdate, MOTCancel,
		InsuranceDraft, InsuranceDistribute, InsuranceAgree,
		InsuranceReject, InsuranceUpdate, InsuranceCancel, InsuranceIssue,
		TaxIssue, TaxUpdate, TaxCancel,
		PublishedIssue, PublishedConsume, PublishedRevoke,
	}
	m := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		m[c.String()] = c
	}
	return m
}()

// ParseCommand parses a command name, as returned by the String method
// of commands, e.g., proposal.pay or published.consume.
func ParseCommand(name string) (Command, error) {
	c, ok := commandsByName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCommandName)
	}
	return c, nil
}
