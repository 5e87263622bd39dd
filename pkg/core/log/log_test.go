// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
)

func TestSetupJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	var buf bytes.Buffer
	log.Setup(&buf, slog.LevelInfo, true)
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	assert.Zero(t, buf.Len(), "debug records are filtered")

	id := uuid.New()
	log.Warn(
		ctx, "revocation failed",
		log.Party("owner", model.Party{
			Organisation: "Alice", Locality: "London", Country: "GB",
		}),
		log.LinearID(id),
		log.Err("err", errors.New("timeout")),
		log.Err("none", nil),
	)
	rec := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), buf.String())
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "revocation failed", rec["msg"])
	assert.Equal(t, "O=Alice,L=London,C=GB", rec["owner"])
	assert.Equal(t, id.String(), rec["linear_id"])
	assert.Equal(t, "timeout", rec["err"])
	assert.Equal(t, "no-error", rec["none"])
	src, ok := rec["source"].(map[string]any)
	require.True(t, ok, "source: %v", rec["source"])
	assert.Contains(t, src["file"], "log_test.go")
}
