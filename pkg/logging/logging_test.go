package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{-1, zerolog.WarnLevel},
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{7, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		t.Setenv(EnvStateDir, dir)

		SetupLogger(tt.verbosity)

		assert.Equal(t, tt.want, zerolog.GlobalLevel(), "verbosity %d", tt.verbosity)
		assert.FileExists(t, filepath.Join(dir, "bpack.log"))
	}
}

func TestSetupFileOnly(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvStateDir, dir)

	SetupFileOnly(1)
	logger := GetLogger("session")
	logger.Info().Str("screen", "list").Msg("entered screen")

	data, err := os.ReadFile(filepath.Join(dir, "bpack.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"session"`)
	assert.Contains(t, string(data), "entered screen")
}

func TestLogFilePath(t *testing.T) {
	t.Setenv(EnvStateDir, "/custom/state")
	assert.Equal(t, filepath.Join("/custom/state", "bpack.log"), LogFilePath())

	t.Setenv(EnvStateDir, "")
	got := LogFilePath()
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "bpack.log", filepath.Base(got))
	assert.Equal(t, "bpack", filepath.Base(filepath.Dir(got)))
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(&buf)

	logger := GetLogger("registry.client")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"registry.client"`)
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "plan-sync")
	done()

	assert.Contains(t, buf.String(), "Operation started")
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), `"operation":"plan-sync"`)
}
