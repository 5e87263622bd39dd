// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package codec converts states and transitions to and from JSON.
// A state is wrapped in an envelope which names its kind, so it may be
// decoded without knowing its type in advance:
//
//	{"kind": "mot", "state": {...}}
//
// A published copy embeds the envelope of its wrapped document.
// The same format is used for the vault payloads, the REST bodies,
// the offline verification files, and the peer revocation requests.
package codec

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Kinds of the non-document states. Documents use the string form of
// their model.DocumentKind.
const (
	KindToken     = "token"
	KindPublished = "published"
)

// ErrUnknownKind indicates an envelope with an unknown kind.
var ErrUnknownKind = errors.New("unknown state kind")

// Envelope is the JSON form of one state.
type Envelope struct {
	Kind  string          `json:"kind"`
	State json.RawMessage `json:"state"`
}

type publishedJSON struct {
	ID    uuid.UUID   `json:"id"`
	Owner model.Party `json:"owner"`
	Doc   Envelope    `json:"doc"`
}

// Kind returns the envelope kind of s.
func Kind(s model.State) (string, error) {
	switch s := s.(type) {
	case model.Document:
		return s.Kind().String(), nil
	case model.Token:
		return KindToken, nil
	case model.Published:
		return KindPublished, nil
	default:
		return "", fmt.Errorf("%T: %w", s, ErrUnknownKind)
	}
}

// Wrap converts s to its envelope.
func Wrap(s model.State) (Envelope, error) {
	kind, err := Kind(s)
	if err != nil {
		return Envelope{}, err
	}
	var body any = s
	if p, ok := s.(model.Published); ok {
		if p.Doc == nil {
			return Envelope{}, errors.New("published copy wraps nothing")
		}
		doc, err := Wrap(p.Doc)
		if err != nil {
			return Envelope{}, fmt.Errorf("wrapped document: %w", err)
		}
		body = publishedJSON{ID: p.ID, Owner: p.Owner, Doc: doc}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s: %w", kind, err)
	}
	return Envelope{Kind: kind, State: b}, nil
}

// Unwrap decodes the state inside e.
func (e Envelope) Unwrap() (model.State, error) {
	switch e.Kind {
	case KindToken:
		return decode[model.Token](e)
	case KindPublished:
		pj, err := decode[publishedJSON](e)
		if err != nil {
			return nil, err
		}
		s, err := pj.Doc.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("wrapped document: %w", err)
		}
		doc, ok := s.(model.Document)
		if !ok {
			return nil, fmt.Errorf("published %s is not a document", pj.Doc.Kind)
		}
		return model.Published{ID: pj.ID, Doc: doc, Owner: pj.Owner}, nil
	}
	k, err := model.ParseDocumentKind(e.Kind)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", e.Kind, ErrUnknownKind)
	}
	switch k {
	case model.DocumentKindProposal:
		return decode[model.Proposal](e)
	case model.DocumentKindMOT:
		return decode[model.MOT](e)
	case model.DocumentKindInsurance:
		return decode[model.Insurance](e)
	default:
		return decode[model.Tax](e)
	}
}

func decode[S any](e Envelope) (s S, err error) {
	if err = json.Unmarshal(e.State, &s); err != nil {
		err = fmt.Errorf("unmarshaling %s: %w", e.Kind, err)
	}
	return
}

// MarshalState encodes s as an envelope.
func MarshalState(s model.State) ([]byte, error) {
	e, err := Wrap(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// UnmarshalState decodes an envelope which was encoded by MarshalState.
func UnmarshalState(b []byte) (model.State, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	return e.Unwrap()
}

// MarshalDocument encodes doc as an envelope.
func MarshalDocument(doc model.Document) ([]byte, error) {
	return MarshalState(doc)
}

// UnmarshalDocument decodes an envelope which must hold a document.
func UnmarshalDocument(b []byte) (model.Document, error) {
	s, err := UnmarshalState(b)
	if err != nil {
		return nil, err
	}
	doc, ok := s.(model.Document)
	if !ok {
		return nil, fmt.Errorf("%T is not a document", s)
	}
	return doc, nil
}

// Transition is the JSON form of a contract.Transition. Commands are
// named like "mot.issue" and states are kept in their envelopes.
type Transition struct {
	Commands []string      `json:"commands"`
	Inputs   []Envelope    `json:"inputs,omitempty"`
	Outputs  []Envelope    `json:"outputs,omitempty"`
	Signers  []model.Party `json:"signers"`
}

// FromTransition converts tx to its JSON form.
func FromTransition(tx contract.Transition) (t Transition, err error) {
	for _, c := range tx.Commands {
		t.Commands = append(t.Commands, c.String())
	}
	if t.Inputs, err = wrapAll(tx.Inputs); err != nil {
		return Transition{}, fmt.Errorf("inputs: %w", err)
	}
	if t.Outputs, err = wrapAll(tx.Outputs); err != nil {
		return Transition{}, fmt.Errorf("outputs: %w", err)
	}
	t.Signers = tx.Signers
	return t, nil
}

// Model converts t to a contract.Transition.
func (t Transition) Model() (tx contract.Transition, err error) {
	for _, name := range t.Commands {
		c, err := contract.ParseCommand(name)
		if err != nil {
			return contract.Transition{}, fmt.Errorf("%q: %w", name, err)
		}
		tx.Commands = append(tx.Commands, c)
	}
	if tx.Inputs, err = unwrapAll(t.Inputs); err != nil {
		return contract.Transition{}, fmt.Errorf("inputs: %w", err)
	}
	if tx.Outputs, err = unwrapAll(t.Outputs); err != nil {
		return contract.Transition{}, fmt.Errorf("outputs: %w", err)
	}
	tx.Signers = t.Signers
	return tx, nil
}

// UnmarshalTransition decodes a JSON transition.
func UnmarshalTransition(b []byte) (contract.Transition, error) {
	var t Transition
	if err := json.Unmarshal(b, &t); err != nil {
		return contract.Transition{}, fmt.Errorf("unmarshaling: %w", err)
	}
	return t.Model()
}

// MarshalTransition encodes tx as JSON.
func MarshalTransition(tx contract.Transition) ([]byte, error) {
	t, err := FromTransition(tx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(t)
}

func wrapAll(ss []model.State) ([]Envelope, error) {
	es := make([]Envelope, 0, len(ss))
	for i, s := range ss {
		e, err := Wrap(s)
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", i, err)
		}
		es = append(es, e)
	}
	return es, nil
}

func unwrapAll(es []Envelope) ([]model.State, error) {
	ss := make([]model.State, 0, len(es))
	for i, e := range es {
		s, err := e.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("state %d: %w", i, err)
		}
		ss = append(ss, s)
	}
	return ss, nil
}
