// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the expected interface for hashing database
// role passwords in the Salted Challenge Response Authentication
// Mechanism (SCRAM) stored format. The implementation lives in the
// adapter layer.
//
// Only hashing is needed here. The client and server conversations
// of the SCRAM protocol are handled by PostgreSQL and its driver.
package scram

// Hasher computes SCRAM stored credentials for a password, so the
// `db init` command can set role passwords without sending them in
// plaintext DDL statements which may be logged.
type Hasher interface {
	// Hash returns a string in the following format for pass.
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	//
	// The pass must be non-empty and is normalized with SASLprep.
	// An empty salt asks for a random one, otherwise it must be
	// base64 encoded. The iters must be 4096 or more.
	Hash(pass, salt string, iters int) (string, error)
}
