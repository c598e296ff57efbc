// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInContext(t *testing.T) {
	t.Parallel()

	t.Run("from nil context return null logger", func(t *testing.T) {
		t.Parallel()
		var ctx context.Context = nil
		log := FromContext(ctx)
		assert.Equal(t, log, nullLogger)
	})

	t.Run("from empty context return null logger", func(t *testing.T) {
		t.Parallel()

		log := FromContext(t.Context())
		assert.Equal(t, log, nullLogger)
	})

	t.Run("context with a logger return that logger", func(t *testing.T) {
		t.Parallel()

		log := NewLogger(os.Stderr)
		ctx := WithContext(t.Context(), log)

		logFromCtx := FromContext(ctx)
		assert.Equal(t, logFromCtx, log)
	})
}

func TestNamed(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	ctx := WithContext(t.Context(), NewLogger(buffer))

	Named(ctx, "adtport:test", "runId", "1234").Info("named line")
	Named(ctx, "adtport:other").Info("other line")

	decoder := json.NewDecoder(buffer)
	var first, second map[string]any
	require.NoError(t, decoder.Decode(&first))
	require.NoError(t, decoder.Decode(&second))

	assert.Equal(t, "adtport:test", first["@module"])
	assert.Equal(t, "1234", first["runId"])
	assert.Equal(t, "adtport:other", second["@module"])
	assert.NotContains(t, second, "runId")
}
