// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package peer routes revocation requests to the parties which hold
// published copies. Parties with a configured node URL are asked over
// HTTP, while other parties are assumed to be hosted by this node and
// revoke their copies locally. A *Router implements publishuc.Peers.
package peer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

const (
	// SelfRevokePath is the route of a node which revokes the copies
	// of the party in the PartyHeader header.
	SelfRevokePath = "/api/ccweb/v1/published/self-revoke"

	// PartyHeader carries the text form of the calling party.
	PartyHeader = "X-Party"
)

// SelfRevoker revokes the caller copies of a document.
// The *publishuc.UseCase implements this interface.
type SelfRevoker interface {
	SelfRevoke(
		ctx context.Context, s model.Session, doc model.Document,
	) (int, error)
}

// Router is a revocation router.
type Router struct {
	urls   map[model.Party]string
	client *http.Client
	local  SelfRevoker
}

// New instantiates a Router which sends requests to the base URL of
// each party in urls, waiting for at most timeout per request.
func New(urls map[model.Party]string, timeout time.Duration) *Router {
	trimmed := make(map[model.Party]string, len(urls))
	for p, u := range urls {
		trimmed[p] = strings.TrimSuffix(u, "/")
	}
	return &Router{
		urls:   trimmed,
		client: &http.Client{Timeout: timeout},
	}
}

// SetLocal sets the revoker of the locally hosted parties. It breaks
// the cycle between the router and the publish use case which uses it,
// so it must be called once before serving requests.
func (r *Router) SetLocal(l SelfRevoker) {
	r.local = l
}

// Revoke asks peer to revoke its copies of doc on behalf of the s
// session. Local revocations take their time from s.
func (r *Router) Revoke(
	ctx context.Context, s model.Session, peer model.Party,
	doc model.Document,
) error {
	u, ok := r.urls[peer]
	if !ok {
		if r.local == nil {
			return fmt.Errorf("no node hosts %s", peer)
		}
		ps := model.Session{Caller: peer, Now: s.Now}
		_, err := r.local.SelfRevoke(ctx, ps, doc)
		return err
	}
	return r.remote(ctx, u, peer, doc)
}

type revokeResponse struct {
	Revoked int    `json:"revoked"`
	Detail  string `json:"detail"`
}

func (r *Router) remote(
	ctx context.Context, base string, peer model.Party, doc model.Document,
) error {
	body, err := codec.MarshalDocument(doc)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, base+SelfRevokePath, bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("preparing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(PartyHeader, peer.String())
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("asking %s: %w", base, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response of %s: %w", base, err)
	}
	var rr revokeResponse
	if err := json.Unmarshal(b, &rr); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("decoding response of %s: %w", base, err)
	}
	if resp.StatusCode >= 300 {
		msg := rr.Detail
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s responded %d: %s", base, resp.StatusCode, msg)
	}
	log.Info(
		ctx, "peer revoked its copies",
		log.Party("peer", peer), log.LinearID(doc.DocumentID()),
	)
	return nil
}
