// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the ccweb
// node. Commands are organized using the cobra library.
// The root command starts the web server itself, the "db init"
// sub-command prepares an empty database for the vault, and the
// "verify" sub-command checks a transition file offline.
//
//	./ccweb [-c /path/of/main/config.yaml]           # start web server
//	./ccweb db init [-c /path/of/main/config.yaml]
//	./ccweb verify /path/of/transition.json [--at 2024-05-01T00:00:00Z]
//	    [-c /path/of/main/config.yaml]
package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alicer3/car-cordapp/pkg/adapter/config"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin/routes"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

var (
	cfgPath  string
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "ccweb",
	Short: "A car documents ledger node",
	Long: `A car documents ledger node which keeps the MOT proposals,
MOT certificates, insurance policies, and vehicle tax documents of its
parties in a PostgreSQL vault. Every change is recorded as a transition
which is verified by the contract rules of its documents (including the
cross-document and payment rules) before being committed.
Documents may be published as copies for their participants and those
copies are revoked, locally or by the peer nodes, when the original
document changes.
The node exposes its REST API with the Gin Gonic web framework and its
verification and publication counters as prometheus metrics.`,
	PersistentPreRunE: setupLogs,
	RunE:              startWebServer,
	Args:              cobra.NoArgs,
}

func setupLogs(_ *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("parsing --log-level: %w", err)
	}
	log.Setup(os.Stderr, level, logJSON)
	return nil
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	log.Info(
		ctx, "configs are loaded",
		slog.String("path", cfgPath),
		slog.String("version", c.Vers.Versions.Config.String()),
	)
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	var e *gin.Engine = c.Gin.NewEngine()
	if err = routes.Register(ctx, e, p, c); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	if err = e.Run(); err != nil {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "config file path")
	pf.StringVar(
		&logLevel, "log-level", "info", "debug, info, warn, or error",
	)
	pf.BoolVar(&logJSON, "log-json", false, "write logs as JSON objects")
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	cfgPath = config.Path(cfgPath)
}
