package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ocg/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name string
		opts logging.Options
		want zerolog.Level
	}{
		{"default", logging.Options{}, zerolog.InfoLevel},
		{"configured", logging.Options{Level: "warn"}, zerolog.WarnLevel},
		{"verbose", logging.Options{Verbose: 1}, zerolog.DebugLevel},
		{"very verbose", logging.Options{Verbose: 2}, zerolog.TraceLevel},
		{"verbose keeps lower level", logging.Options{Level: "trace", Verbose: 1}, zerolog.TraceLevel},
		{"quiet wins", logging.Options{Verbose: 2, Quiet: true}, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logging.New(&bytes.Buffer{}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.Options{Format: "json"})
	require.NoError(t, err)

	log.Info().Str("lang", "python").Msg("generated")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "python", rec["lang"])
	assert.Equal(t, "generated", rec["message"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, logging.Options{Format: "console"})
	require.NoError(t, err)

	log.Error().Msg("Failed to build client.")
	assert.Contains(t, buf.String(), "Failed to build client.")
}

func TestNew_Invalid(t *testing.T) {
	_, err := logging.New(&bytes.Buffer{}, logging.Options{Level: "loud"})
	assert.Error(t, err)

	_, err = logging.New(&bytes.Buffer{}, logging.Options{Format: "xml"})
	assert.Error(t, err)
}
