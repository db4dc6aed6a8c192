package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithOutput_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Str("component", "dashboard").Msg("shown")
	assert.Contains(t, buf.String(), `"component":"dashboard"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestNewLoggerFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closer, err := NewLoggerFromConfig(LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Outputs:  []string{"file"},
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Debug().Msg("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewLoggerFromConfig_UnknownOutput(t *testing.T) {
	_, _, err := NewLoggerFromConfig(LoggingConfig{Outputs: []string{"syslog"}})
	assert.Error(t, err)
}
