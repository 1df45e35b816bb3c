package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"chatty": zerolog.InfoLevel,
		"info":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestAdapterWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.DebugLevel)

	log.Info("echo", "field generated", map[string]interface{}{"lines": 4})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "echo", entry["component"])
	assert.Equal(t, "field generated", entry["message"])
	assert.EqualValues(t, 4, entry["lines"])
}

func TestAdapterError(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel)

	log.Error("session", errors.New("boom"), nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel)

	log.Debug("echo", "hidden", nil)
	log.Info("echo", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warning("echo", "shown", nil)
	assert.NotZero(t, buf.Len())
}
