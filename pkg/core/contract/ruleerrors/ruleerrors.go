// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ruleerrors lists every rule which a transition may violate.
// Each rule is a comparable RuleError value, so a violation may be
// recognized with errors.Is even after being wrapped with details.
// Rules are grouped by their Kind which may be obtained with KindOf.
package ruleerrors

import (
	"errors"
)

// Kind categorizes the violated rules.
type Kind int

// Valid values for the Kind enum.
const (
	KindNone Kind = iota // not a rule violation

	Structural        // wrong cardinality or type of states/commands
	Status            // input or output status is not acceptable
	FieldImmutability // a field changed which must not change
	Authorization     // a required signer or entitled caller is missing
	CrossDocument     // a referenced document is not consistent
	Payment           // escrow amount, recipient, or conservation
	Temporal          // a date invariant is broken
)

// String returns the name of the kind as used in API responses.
func (k Kind) String() string {
	switch k {
	case Structural:
		return "StructuralViolation"
	case Status:
		return "StatusViolation"
	case FieldImmutability:
		return "FieldImmutabilityViolation"
	case Authorization:
		return "AuthorizationViolation"
	case CrossDocument:
		return "CrossDocumentViolation"
	case Payment:
		return "PaymentViolation"
	case Temporal:
		return "TemporalViolation"
	default:
		return "None"
	}
}

// RuleError identifies a rule violation. The zero RuleError is not
// a valid rule.
type RuleError struct {
	kind    Kind
	message string
}

func newRuleError(kind Kind, message string) RuleError {
	return RuleError{kind: kind, message: message}
}

// Error satisfies the error interface and prints the rule name.
func (e RuleError) Error() string {
	return e.message
}

// Kind returns the category of the violated rule.
func (e RuleError) Kind() Kind {
	return e.kind
}

// Rule returns the rule name, e.g., ErrProposalNotDraft.
func (e RuleError) Rule() string {
	return e.message
}

// As finds the first RuleError in the err chain.
func As(err error) (RuleError, bool) {
	var re RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return RuleError{}, false
}

// KindOf returns the kind of the first RuleError in the err chain,
// or KindNone if err is not a rule violation.
func KindOf(err error) Kind {
	if re, ok := As(err); ok {
		return re.kind
	}
	return KindNone
}

// Structural rules.
var (
	// ErrMissingCommand indicates that a contract was triggered by its
	// states, but the transition had no command of that contract, or
	// that no contract governs the transition at all.
	ErrMissingCommand = newRuleError(Structural, "ErrMissingCommand")

	// ErrMultipleCommands indicates more than one command of the same
	// contract in a single transition.
	ErrMultipleCommands = newRuleError(Structural, "ErrMultipleCommands")

	// ErrUnknownCommand indicates a command which no contract knows.
	ErrUnknownCommand = newRuleError(Structural, "ErrUnknownCommand")

	// ErrUnexpectedInputs indicates that a creation command had inputs.
	ErrUnexpectedInputs = newRuleError(Structural, "ErrUnexpectedInputs")

	// ErrUnexpectedOutputs indicates that a terminating command (such as
	// cancel or revoke) had outputs.
	ErrUnexpectedOutputs = newRuleError(Structural, "ErrUnexpectedOutputs")

	// ErrInputCount indicates a wrong number or type of inputs.
	ErrInputCount = newRuleError(Structural, "ErrInputCount")

	// ErrOutputCount indicates a wrong number or type of outputs.
	ErrOutputCount = newRuleError(Structural, "ErrOutputCount")

	// ErrIncompleteVehicle indicates a vehicle with missing fields.
	ErrIncompleteVehicle = newRuleError(Structural, "ErrIncompleteVehicle")

	// ErrNonPositivePrice indicates a price which is zero or negative
	// where a strictly positive price is required.
	ErrNonPositivePrice = newRuleError(Structural, "ErrNonPositivePrice")

	// ErrNegativePrice indicates a negative price.
	ErrNegativePrice = newRuleError(Structural, "ErrNegativePrice")

	// ErrMixedPublishedDocuments indicates that a revocation tried to
	// consume copies of more than one document.
	ErrMixedPublishedDocuments = newRuleError(Structural, "ErrMixedPublishedDocuments")

	// ErrNotPublished indicates a non-published input in a revocation.
	ErrNotPublished = newRuleError(Structural, "ErrNotPublished")
)

// Status rules.
var (
	// ErrInputStatus indicates an input status which is not acceptable
	// for the attempted command.
	ErrInputStatus = newRuleError(Status, "ErrInputStatus")

	// ErrOutputStatus indicates an output status which is not acceptable
	// for the attempted command.
	ErrOutputStatus = newRuleError(Status, "ErrOutputStatus")
)

// Field immutability rules.
var (
	// ErrImmutableFieldChanged indicates that a field was changed which
	// the attempted command does not allow to change.
	ErrImmutableFieldChanged = newRuleError(FieldImmutability, "ErrImmutableFieldChanged")
)

// Authorization rules.
var (
	// ErrMissingSigner indicates that a required signer has not signed.
	ErrMissingSigner = newRuleError(Authorization, "ErrMissingSigner")

	// ErrNotActionParty indicates that the caller is not the party
	// which is entitled to make the next move.
	ErrNotActionParty = newRuleError(Authorization, "ErrNotActionParty")

	// ErrNotParticipant indicates that the caller does not participate
	// in the document.
	ErrNotParticipant = newRuleError(Authorization, "ErrNotParticipant")

	// ErrWrongRole indicates that the caller participates in the
	// document, but with a role which may not run the command, e.g.,
	// an owner trying to issue an MOT.
	ErrWrongRole = newRuleError(Authorization, "ErrWrongRole")

	// ErrNotTaxAuthority indicates that a tax record names an authority
	// with an unexpected organisation name.
	ErrNotTaxAuthority = newRuleError(Authorization, "ErrNotTaxAuthority")

	// ErrCounterOfferDirection indicates that a party updated a price
	// in its own favour while the counter-offer policy is enforced.
	ErrCounterOfferDirection = newRuleError(Authorization, "ErrCounterOfferDirection")
)

// Cross document rules.
var (
	// ErrMismatchingBridge indicates that an issued MOT does not carry
	// the tester, owner, or vehicle of its consumed proposal.
	ErrMismatchingBridge = newRuleError(CrossDocument, "ErrMismatchingBridge")

	// ErrMissingPublishedMOT indicates that exactly one published MOT
	// was expected, but a different number was provided.
	ErrMissingPublishedMOT = newRuleError(CrossDocument, "ErrMissingPublishedMOT")

	// ErrMissingPublishedInsurance indicates that exactly one published
	// Insurance was expected, but a different number was provided.
	ErrMissingPublishedInsurance = newRuleError(CrossDocument, "ErrMissingPublishedInsurance")

	// ErrFailedMOT indicates an MOT which has not passed.
	ErrFailedMOT = newRuleError(CrossDocument, "ErrFailedMOT")

	// ErrVehicleMismatch indicates a referenced document of another
	// vehicle.
	ErrVehicleMismatch = newRuleError(CrossDocument, "ErrVehicleMismatch")

	// ErrOwnerMismatch indicates a referenced document of another owner.
	ErrOwnerMismatch = newRuleError(CrossDocument, "ErrOwnerMismatch")

	// ErrStaleMOT indicates an MOT which was not tested within the past
	// year.
	ErrStaleMOT = newRuleError(CrossDocument, "ErrStaleMOT")

	// ErrMOTExpiresEarly indicates an MOT which expires before the
	// depending document.
	ErrMOTExpiresEarly = newRuleError(CrossDocument, "ErrMOTExpiresEarly")

	// ErrInsuranceNotIssued indicates a referenced Insurance which is
	// not ISSUED.
	ErrInsuranceNotIssued = newRuleError(CrossDocument, "ErrInsuranceNotIssued")

	// ErrInsuranceStartsLate indicates an Insurance which does not take
	// effect before the tax record.
	ErrInsuranceStartsLate = newRuleError(CrossDocument, "ErrInsuranceStartsLate")

	// ErrInsuranceExpiresEarly indicates an Insurance which expires
	// before the tax record.
	ErrInsuranceExpiresEarly = newRuleError(CrossDocument, "ErrInsuranceExpiresEarly")
)

// Payment rules.
var (
	// ErrNoFunds indicates that no token was provided as input or the
	// payer balance does not suffice.
	ErrNoFunds = newRuleError(Payment, "ErrNoFunds")

	// ErrForeignFunds indicates an input token which is not held by the
	// expected payer.
	ErrForeignFunds = newRuleError(Payment, "ErrForeignFunds")

	// ErrCurrencyMismatch indicates a token in another currency.
	ErrCurrencyMismatch = newRuleError(Payment, "ErrCurrencyMismatch")

	// ErrWrongPayeeAmount indicates that the payee does not receive
	// exactly the expected price.
	ErrWrongPayeeAmount = newRuleError(Payment, "ErrWrongPayeeAmount")

	// ErrValueLeak indicates that the total value of input tokens and
	// output tokens differ.
	ErrValueLeak = newRuleError(Payment, "ErrValueLeak")

	// ErrNonPositiveToken indicates a consumed or produced token whose
	// quantity is zero or negative.
	ErrNonPositiveToken = newRuleError(Payment, "ErrNonPositiveToken")

	// ErrTokenOverflow indicates tokens whose total quantity does not
	// fit in the amount representation.
	ErrTokenOverflow = newRuleError(Payment, "ErrTokenOverflow")

	// ErrUnexpectedTokens indicates tokens which are moved by a
	// transition without a paying command.
	ErrUnexpectedTokens = newRuleError(Payment, "ErrUnexpectedTokens")
)

// Temporal rules.
var (
	// ErrExpiryNotAfterEffective indicates an expiry date which is not
	// after the effective date.
	ErrExpiryNotAfterEffective = newRuleError(Temporal, "ErrExpiryNotAfterEffective")

	// ErrTestDateInFuture indicates an MOT test date after now.
	ErrTestDateInFuture = newRuleError(Temporal, "ErrTestDateInFuture")

	// ErrAlreadyExpired indicates an expiry date which is not after now.
	ErrAlreadyExpired = newRuleError(Temporal, "ErrAlreadyExpired")

	// ErrEffectiveInPast indicates an effective date before today.
	ErrEffectiveInPast = newRuleError(Temporal, "ErrEffectiveInPast")
)
