package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("rows", DefaultRows, "")
	flags.Int("columns", DefaultColumns, "")
	flags.String("log-level", "info", "")
	flags.String("log-format", "text", "")
	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rcsheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRows, cfg.Sheet.Rows)
	assert.Equal(t, DefaultColumns, cfg.Sheet.Columns)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, "sheet:\n  rows: 10\n  columns: 4\nlogger:\n  format: json\n")

	cfg, err := LoadConfig(path, testFlags())
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Sheet.Rows)
	assert.Equal(t, 4, cfg.Sheet.Columns)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfig(t, "sheet:\n  rows: 10\n  columns: 4\n")
	t.Setenv("RCSHEET_SHEET_ROWS", "20")
	t.Setenv("RCSHEET_LOGGER_LEVEL", "debug")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--columns", "7"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Sheet.Rows, "env beats file")
	assert.Equal(t, 7, cfg.Sheet.Columns, "flag beats file")
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfigRejectsNegativeSize(t *testing.T) {
	path := writeConfig(t, "sheet:\n  rows: -1\n")
	_, err := LoadConfig(path, nil)
	assert.Error(t, err)
}
