package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogtb/go-spreadsheet/cmd/rcsheet/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&config.Logger{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("cell", "R1C1").Debug("recompute finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "R1C1", entry["cell"])
	assert.Equal(t, "recompute finished", entry["msg"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&config.Logger{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(&config.Logger{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
