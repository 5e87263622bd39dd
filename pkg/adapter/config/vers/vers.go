// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers reads the versions block of a ccweb configuration file.
// It is decoded before the remaining settings, so the config package
// may reject files whose format or database schema version is not
// supported by this binary before interpreting their other fields.
package vers

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Config is embedded inline by the config versions, so each file has
// a top-level versions block.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions holds the format version of the configuration file and the
// version of the vault tables in its database.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Marshalled is the YAML form of Config with string versions. It is
// nested in the Marshalled forms of the config versions, because the
// yaml.Marshaler interface is only consulted for the top-level value.
type Marshalled struct {
	Versions struct {
		Database string
		Config   string
	}
}

// Marshal returns the Marshalled form of vc.
func (vc *Config) Marshal() *Marshalled {
	m := &Marshalled{}
	m.Versions.Database = vc.Versions.Database.Marshal()
	m.Versions.Config = vc.Versions.Config.Marshal()
	return m
}

// Load decodes the versions block of data and ignores other fields.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate checks that the config version of vc can be read by code
// which supports the `supported` version, that is, they have the same
// major version and vc is not newer in its minor version.
func (vc *Config) Validate(supported model.SemVer) error {
	v := vc.Versions.Config
	switch {
	case v[0] != supported[0]:
		return fmt.Errorf("incompatible major version: %d", v[0])
	case v[1] > supported[1]:
		return fmt.Errorf("unsupported minor version: %d", v[1])
	}
	return nil
}
