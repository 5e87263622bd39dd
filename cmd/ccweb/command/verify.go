// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alicer3/car-cordapp/pkg/adapter/codec"
	"github.com/alicer3/car-cordapp/pkg/adapter/config"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/contract/ruleerrors"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/verifyuc"
)

var verifyAt string

var verifyCmd = &cobra.Command{
	Use:   "verify path",
	Short: "Verify a transition file without a database",
	Long: `Verify a JSON encoded transition, as accepted by the
POST /transitions/verify API, against the contract rules. A "-" path
reads the transition from the standard input.
The tax authority, tax price, and reject signers policy are taken from
the config file if it exists. Otherwise, their defaults are used.
The temporal rules are checked at the current time unless the --at flag
gives an RFC 3339 time. The first violated rule is printed with its kind
and the command exits with a non-zero code.`,
	RunE: verify,
	Args: cobra.ExactArgs(1),
}

func verify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	now := time.Now()
	if verifyAt != "" {
		t, err := time.Parse(time.RFC3339, verifyAt)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
		now = t
	}
	b, err := readTransition(args[0])
	if err != nil {
		return err
	}
	tx, err := codec.UnmarshalTransition(b)
	if err != nil {
		return fmt.Errorf("decoding transition: %w", err)
	}
	v, err := loadVerifier(ctx)
	if err != nil {
		return err
	}
	uc, err := verifyuc.New(v)
	if err != nil {
		return fmt.Errorf("creating verify use case: %w", err)
	}
	err = uc.Verify(ctx, tx, now)
	out := cmd.OutOrStdout()
	re, ok := ruleerrors.As(err)
	switch {
	case err == nil:
		fmt.Fprintln(out, "valid")
		return nil
	case ok:
		fmt.Fprintf(out, "invalid: %s (%s)\n", re.Rule(), re.Kind())
		return errors.New("transition is rejected")
	default:
		return err
	}
}

func readTransition(path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return b, nil
}

// loadVerifier creates a verifier from the ledger settings of the
// config file, or with the default settings if that file is missing.
func loadVerifier(ctx context.Context) (*contract.Verifier, error) {
	c, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn(ctx, "no config file, using the default contract settings")
		return contract.New()
	case err != nil:
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	return c.Usecases.Ledger.NewVerifier()
}

func init() {
	verifyCmd.Flags().StringVar(
		&verifyAt, "at", "", "verification time in RFC 3339 format",
	)
	rootCmd.AddCommand(verifyCmd)
}
