package log

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scdl/config"
)

func TestStackHookOnlyOnErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, zerolog.DebugLevel)

	logger.Info().Msg("hello")
	var info map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.NotContains(t, info, "stack")
	assert.Equal(t, "hello", info["message"])

	buf.Reset()
	logger.Error().Msg("boom")
	var errEvent map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &errEvent))
	assert.Contains(t, errEvent, "stack")
	assert.Contains(t, errEvent, "version")
}

func TestFromConfigPanicsOnInvalidLevel(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { FromConfig(config.Log{Level: "nope", Format: "json"}) })
	assert.Panics(t, func() { FromConfig(config.Log{Level: "info", Format: "xml"}) })
	assert.NotPanics(t, func() { FromConfig(config.Log{Level: "info", Format: "auto"}) })
}
