// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

var (
	tester = model.Party{Organisation: "Garage", Locality: "Leeds", Country: "GB"}
	owner  = model.Party{Organisation: "Alice", Locality: "London", Country: "GB"}
)

func writeDraft(t *testing.T, dir string, status model.Status) string {
	b, err := codec.MarshalTransition(contract.Transition{
		Commands: []contract.Command{contract.ProposalDraft},
		Outputs: []model.State{model.Proposal{
			Tester: tester,
			Owner:  owner,
			Vehicle: model.Vehicle{
				ID: 1, RegistrationNo: "AB12 CDE", Country: "GB",
				Model: "Civic", Category: "M1", Mileage: 42000,
			},
			Price:       model.GBP(100),
			Status:      status,
			ActionParty: tester,
		}},
		Signers: []model.Party{tester},
	})
	require.NoError(t, err)
	path := filepath.Join(dir, status.String()+".json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func runVerify(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.yaml")

	out, err := runVerify(
		t, "verify", writeDraft(t, dir, model.StatusDraft), "-c", missing,
	)
	require.NoError(t, err)
	require.Equal(t, "valid\n", out)

	out, err = runVerify(
		t, "verify", writeDraft(t, dir, model.StatusPending), "-c", missing,
	)
	require.Error(t, err)
	require.Contains(t, out, "invalid: ")
	require.Contains(t, out, "Violation)")

	_, err = runVerify(
		t, "verify", filepath.Join(dir, "none.json"), "-c", missing,
	)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = runVerify(
		t, "verify", writeDraft(t, dir, model.StatusDraft),
		"--at", "yesterday", "-c", missing,
	)
	require.Error(t, err)
	verifyAt = ""
}
