package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestInit_JSONWithService(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var buf bytes.Buffer
	log := Init(Options{Level: "warn", Output: &buf, Service: "catalog"})

	log.Info().Msg("dropped")
	log.Warn().Str("kind", "configuration").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "catalog", entry["service"])
	assert.Equal(t, "configuration", entry["kind"])
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})

	l := Get()
	l.Info().Msg("hello")
	assert.Contains(t, first.String(), "hello")
	assert.Empty(t, second.String())
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	assert.Panics(t, func() { Get() })
}
