// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package contract contains the transition validation rules of the
// vehicle certification documents. A Verifier checks a proposed
// Transition against the state machine of every document type which
// is involved in it (proposals, MOT tests, insurance policies, road
// tax records, and their published copies) and the dependencies among
// those documents, such as the valid MOT which must be presented when
// an insurance policy or a tax record is issued.
//
// Verification is pure. It performs no I/O and reads the current time
// only from its arguments. The rules of each command are checked in a
// fixed order and the first violated rule is returned. All violations
// wrap one of the ruleerrors sentinels.
package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// RejectSignerPolicy specifies who must sign a Reject command.
type RejectSignerPolicy int

// Valid values for the RejectSignerPolicy enum.
const (
	RejectSignerPolicyInvalid RejectSignerPolicy = iota

	// RejectByResponder requires the signature of the party which is
	// rejecting the offer, i.e., the action-party of the input.
	RejectByResponder
	// RejectByBoth requires the signature of both participants.
	RejectByBoth
	// RejectByAny requires the signature of at least one participant.
	RejectByAny
)

// ErrUnknownRejectSignerPolicy indicates an unknown policy name.
var ErrUnknownRejectSignerPolicy = errors.New("unknown reject signer policy")

// String returns the policy name. Invalid policies cause a panic.
func (p RejectSignerPolicy) String() string {
	switch p {
	case RejectByResponder:
		return "responder"
	case RejectByBoth:
		return "both"
	case RejectByAny:
		return "any"
	default:
		panic(ErrUnknownRejectSignerPolicy)
	}
}

// ParseRejectSignerPolicy parses responder, both, or any strings
// case-insensitively.
func ParseRejectSignerPolicy(s string) (RejectSignerPolicy, error) {
	switch strings.ToLower(s) {
	case "responder":
		return RejectByResponder, nil
	case "both":
		return RejectByBoth, nil
	case "any":
		return RejectByAny, nil
	default:
		return RejectSignerPolicyInvalid, fmt.Errorf(
			"%q: %w", s, ErrUnknownRejectSignerPolicy,
		)
	}
}

// Verifier verifies transitions. It is safe for concurrent use because
// it is never modified after its creation.
type Verifier struct {
	rejectPolicy RejectSignerPolicy
	taxAuthority string
	taxPrice     model.Amount
}

// Option is a functional option for the Verifier.
type Option func(v *Verifier) error

// WithRejectSignerPolicy configures who must sign Reject commands of
// proposals and insurance policies. Default is RejectByResponder.
func WithRejectSignerPolicy(p RejectSignerPolicy) Option {
	return func(v *Verifier) error {
		switch p {
		case RejectByResponder, RejectByBoth, RejectByAny:
		default:
			return ErrUnknownRejectSignerPolicy
		}
		if v.rejectPolicy != RejectSignerPolicyInvalid {
			return errors.New("reject signer policy is already configured")
		}
		v.rejectPolicy = p
		return nil
	}
}

// WithTaxAuthority configures the organisation name of the party which
// may issue road tax records. Default is model.DefaultTaxAuthority.
func WithTaxAuthority(org string) Option {
	return func(v *Verifier) error {
		if org == "" {
			return errors.New("tax authority organisation is empty")
		}
		if v.taxAuthority != "" {
			return errors.New("tax authority is already configured")
		}
		v.taxAuthority = org
		return nil
	}
}

// WithTaxPrice configures the price of road tax records. Default is
// model.TaxPrice.
func WithTaxPrice(price model.Amount) Option {
	return func(v *Verifier) error {
		if !price.IsPositive() {
			return fmt.Errorf("tax price (%v) is not positive", price)
		}
		if v.taxPrice != (model.Amount{}) {
			return errors.New("tax price is already configured")
		}
		v.taxPrice = price
		return nil
	}
}

// New instantiates a Verifier.
func New(opts ...Option) (*Verifier, error) {
	v := &Verifier{}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if v.rejectPolicy == RejectSignerPolicyInvalid {
		v.rejectPolicy = RejectByResponder
	}
	if v.taxAuthority == "" {
		v.taxAuthority = model.DefaultTaxAuthority
	}
	if v.taxPrice == (model.Amount{}) {
		v.taxPrice = model.TaxPrice
	}
	return v, nil
}

// TaxAuthority returns the organisation name of the tax authority.
func (v *Verifier) TaxAuthority() string {
	return v.taxAuthority
}

// TaxPrice returns the price of road tax records.
func (v *Verifier) TaxPrice() model.Amount {
	return v.taxPrice
}

// Verify checks tx at the given now time. It returns nil if tx is a
// valid transition and otherwise, it returns the first violated rule.
//
// A contract runs when tx has a command of its type or when a state of
// its type is consumed or produced by tx. Each running contract needs
// exactly one command of its type and at least one contract must run.
// Contracts run in a fixed order of proposals, MOT tests, insurance
// policies, tax records, and finally the published copies.
// Tokens may only move along with a paying command.
func (v *Verifier) Verify(tx Transition, now time.Time) error {
	cmds := make(map[contractKind][]Command, len(contractKinds))
	for _, c := range tx.Commands {
		if c == nil {
			return pkgerrors.Wrap(ruleerrors.ErrUnknownCommand, "nil command")
		}
		cmds[c.contract()] = append(cmds[c.contract()], c)
	}
	if hasStateOf[model.Token](tx) && !hasPayingCommand(tx.Commands) {
		return pkgerrors.Wrap(
			ruleerrors.ErrUnexpectedTokens, "tokens move without a payment",
		)
	}
	ran := false
	for _, k := range contractKinds {
		if len(cmds[k]) == 0 && !k.triggered(tx) {
			continue
		}
		cmd, err := singleCommand(k, cmds[k])
		if err != nil {
			return err
		}
		if err = v.run(cmd, tx, now); err != nil {
			return err
		}
		ran = true
	}
	if !ran {
		return pkgerrors.Wrap(
			ruleerrors.ErrMissingCommand, "no contract governs the transition",
		)
	}
	return nil
}

// hasPayingCommand reports whether one of cmds transfers tokens.
func hasPayingCommand(cmds []Command) bool {
	for _, c := range cmds {
		switch c {
		case ProposalPay, InsuranceIssue, TaxIssue:
			return true
		}
	}
	return false
}

func (k contractKind) triggered(tx Transition) bool {
	switch k {
	case contractProposal:
		return hasStateOf[model.Proposal](tx)
	case contractMOT:
		return hasStateOf[model.MOT](tx)
	case contractInsurance:
		return hasStateOf[model.Insurance](tx)
	case contractTax:
		return hasStateOf[model.Tax](tx)
	case contractPublished:
		return hasStateOf[model.Published](tx)
	default:
		return false
	}
}

func (k contractKind) String() string {
	switch k {
	case contractProposal:
		return "proposal"
	case contractMOT:
		return "mot"
	case contractInsurance:
		return "insurance"
	case contractTax:
		return "tax"
	case contractPublished:
		return "published"
	default:
		return fmt.Sprintf("contract(%d)", int(k))
	}
}

func singleCommand(k contractKind, cmds []Command) (Command, error) {
	switch len(cmds) {
	case 0:
		return nil, pkgerrors.Wrapf(
			ruleerrors.ErrMissingCommand, "no %v command", k,
		)
	case 1:
		return cmds[0], nil
	default:
		return nil, pkgerrors.Wrapf(
			ruleerrors.ErrMultipleCommands, "%d %v commands", len(cmds), k,
		)
	}
}

func (v *Verifier) run(cmd Command, tx Transition, now time.Time) error {
	switch c := cmd.(type) {
	case ProposalCommand:
		return v.verifyProposal(c, tx)
	case MOTCommand:
		return v.verifyMOT(c, tx, now)
	case InsuranceCommand:
		return v.verifyInsurance(c, tx, now)
	case TaxCommand:
		return v.verifyTax(c, tx, now)
	case PublishedCommand:
		return v.verifyPublished(c, tx)
	default:
		return pkgerrors.Wrapf(ruleerrors.ErrUnknownCommand, "%T", cmd)
	}
}
