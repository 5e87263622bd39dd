// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alicer3/car-cordapp/pkg/adapter/config"
	"github.com/alicer3/car-cordapp/pkg/adapter/config/cfg1"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/schemauc"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For a fresh installation, the init sub-command may be used.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an empty database for the vault",
	Long: `Initialize an empty database for the vault tables whose
schema version is specified in the configuration file. The database
connection information are also read from the config file.

The admin role (suffixed by the role-suffix setting) must exist and its
password must be stored in the .pgpass file of the pass-dir directory.
If the ccwebN schema exists (N being the schema major version), it must
be empty, so it can be dropped and created again. The ccweb normal role
is created if it does not exist and passwords of both roles are renewed.
New passwords are written to the .pgpass.new file at first and moved
over the .pgpass file after the database commits them, so an abrupt
failure may be recovered by running this command again.`,
	RunE: initDB,
	Args: cobra.NoArgs,
}

func initDB(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	iduc := schemauc.NewInitDB(cfg1.Settler{Config: c})
	if err = iduc.InitDB(ctx); err != nil {
		return fmt.Errorf("initializing DB: %w", err)
	}
	return nil
}

func init() {
	dbCmd.AddCommand(initCmd)
	rootCmd.AddCommand(dbCmd)
}
