package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("model", "schnell").Msg("generated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "generated", entry["message"])
	assert.Equal(t, "schnell", entry["model"])
	assert.Equal(t, "studio", entry["service"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLoggerTestEnvSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("test", &buf)
	logger.Info().Msg("quiet")
	assert.Zero(t, buf.Len())
}
