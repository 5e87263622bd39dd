// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/adapter/config"
	"github.com/alicer3/car-cordapp/pkg/core/cerr"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

func TestPath(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	assert.Equal(t, config.DefaultPath, config.Path(""))
	assert.Equal(t, "a.yaml", config.Path("a.yaml"))
	t.Setenv(config.EnvPath, "/etc/ccweb.yaml")
	assert.Equal(t, "/etc/ccweb.yaml", config.Path(""))
	assert.Equal(t, "a.yaml", config.Path("a.yaml"))
}

func TestLoad(t *testing.T) {
	c, err := config.Load(filepath.Join("..", "..", "..", "configs", "ccweb.yaml"))
	require.NoError(t, err, "loading the sample config file")
	assert.Equal(t, model.PublishModeReuse, c.Usecases.Publish.Mode())
	assert.Len(t, c.PeerURLs(), 1)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadVersionMismatch(t *testing.T) {
	for name, tc := range map[string]struct {
		versions string
		expected model.SemVer
		actual   model.SemVer
	}{
		"config": {
			versions: "database: 1.0.0\n  config: 2.0.0",
			expected: model.SemVer{1, 0, 0},
			actual:   model.SemVer{2, 0, 0},
		},
		"database": {
			versions: "database: 1.1.0\n  config: 1.0.0",
			expected: model.SemVer{1, 0, 0},
			actual:   model.SemVer{1, 1, 0},
		},
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ccweb.yaml")
			data := "versions:\n  " + tc.versions + "\n"
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
			_, err := config.Load(path)
			var msve *cerr.MismatchingSemVerError
			require.True(t, errors.As(err, &msve), "err: %v", err)
			assert.Equal(t, tc.expected, msve[0])
			assert.Equal(t, tc.actual, msve[1])
		})
	}
}
