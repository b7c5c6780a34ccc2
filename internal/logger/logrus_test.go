package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusLogger_File(t *testing.T) {
	location := filepath.Join(t.TempDir(), "nixvuln.log")

	l, err := NewLogrusLogger(LogrusConfig{
		EnableFile:   true,
		Structured:   true,
		Level:        logrus.InfoLevel,
		FileLocation: location,
	})
	require.NoError(t, err)

	l.Infof("synced %d records", 3)
	l.Debug("not written")
	l.Nested(map[string]interface{}{"segment": "modified"}).Warn("stale")

	contents, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"msg":"synced 3 records"`)
	assert.Contains(t, string(contents), `"segment":"modified"`)
	assert.NotContains(t, string(contents), "not written")
}

func TestNewLogrusLogger_Discard(t *testing.T) {
	l, err := NewLogrusLogger(LogrusConfig{Level: logrus.DebugLevel})
	require.NoError(t, err)
	l.Error("goes nowhere")
}

func TestNewLogrusLogger_BadFile(t *testing.T) {
	_, err := NewLogrusLogger(LogrusConfig{
		EnableFile:   true,
		FileLocation: filepath.Join(t.TempDir(), "missing", "dir", "nixvuln.log"),
	})
	assert.Error(t, err)
}
