// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the ccweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// These settings may be versioned and maintained by sub-packages.
// However, the parsed and validated configurations should be passed
// to their ultimate components as a series of individual params (for
// the mandatory items) and a series of functional options (for
// the optional items).
package config

import (
	"fmt"
	"os"

	"github.com/alicer3/car-cordapp/pkg/adapter/config/cfg1"
	"github.com/alicer3/car-cordapp/pkg/adapter/config/vers"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
)

// EnvPath names the environment variable which may hold the path of
// the configuration file when no path is given explicitly.
const EnvPath = "CONFIG_FILE"

// DefaultPath is the configuration file path when neither an explicit
// path nor the EnvPath environment variable is given.
const DefaultPath = "configs/ccweb.yaml"

// Path returns p if it is not empty, otherwise, the value of the
// EnvPath environment variable or the DefaultPath respectively.
func Path(p string) string {
	if p != "" {
		return p
	}
	if p = os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
// Given path must belong to a configuration file which conforms with
// the latest known configuration settings format.
// The corresponding database schema version must also match with the
// latest known database schema version.
func Load(path string) (*cfg1.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	v, err := vers.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	vc := v.Versions
	switch {
	case vc.Config != cfg1.Version:
		return nil, fmt.Errorf(
			"config version: %w",
			&cerr.MismatchingSemVerError{cfg1.Version, vc.Config},
		)
	case vc.Database != postgres.Version:
		return nil, fmt.Errorf(
			"database schema version: %w",
			&cerr.MismatchingSemVerError{postgres.Version, vc.Database},
		)
	}
	c, err := cfg1.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading cfg1.Config: %w", err)
	}
	return c, nil
}
