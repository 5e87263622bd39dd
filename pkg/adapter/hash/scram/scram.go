// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram implements the core scram.Hasher interface on top of
// the github.com/xdg-go/scram module.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xdg-go/scram"
)

// MinIterations is the least accepted PBKDF2 iterations count.
const MinIterations = 4096

// Mechanism is a SCRAM hasher with a fixed underlying hash function.
type Mechanism struct {
	gen     scram.HashGeneratorFcn
	saltLen int
	name    string
}

// SHA256 returns the SCRAM-SHA-256 mechanism which is the default
// password_encryption method of PostgreSQL.
func SHA256() *Mechanism {
	return &Mechanism{gen: scram.SHA256, saltLen: 16, name: "SCRAM-SHA-256"}
}

// Hash computes the stored credentials of pass and formats them as
// accepted by the ALTER ROLE ... PASSWORD statement.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	if pass == "" {
		return "", errors.New("password must be non-empty")
	}
	if iters < MinIterations {
		return "", fmt.Errorf("iters (%d) is less than %d", iters, MinIterations)
	}
	var raw []byte
	if salt == "" {
		raw = make([]byte, m.saltLen)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(raw)
	} else {
		var err error
		if raw, err = base64.StdEncoding.DecodeString(salt); err != nil {
			return "", fmt.Errorf("decoding base64 salt: %w", err)
		}
	}
	c, err := m.gen.NewClient("", pass, "")
	if err != nil {
		return "", fmt.Errorf("preparing password: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt: string(raw), Iters: iters,
	})
	b64 := base64.StdEncoding.EncodeToString
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name, iters, salt, b64(sc.StoredKey), b64(sc.ServerKey),
	), nil
}
