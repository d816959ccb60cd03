package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	lvl, err = ParseLevel("trace")
	require.NoError(t, err)
	assert.Equal(t, zerolog.TraceLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesJSONToNonTerminal(t *testing.T) {
	defer SetLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	log := New(zerolog.WarnLevel, &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Str("subsystem", "test").Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "test", line["subsystem"])
	assert.Equal(t, "shown", line["message"])

	buf.Reset()
	SetLevel(zerolog.DebugLevel)
	log.Debug().Msg("now visible")
	assert.NotZero(t, buf.Len())
}
