package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buffdev/bufdev"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buffdev.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, bufdev.DefaultName, cfg.Device.Name)
	assert.Equal(t, 10, cfg.Device.Pages)
	assert.Equal(t, 4096, cfg.Device.PageSize)
	assert.Equal(t, int64(40960), cfg.Capacity())
	assert.Equal(t, bufdev.SeekEndReference, cfg.SeekEndMode())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
device:
  name: scratch
  pages: 2
  pageSize: 512
  seekEnd: conventional
log:
  level: debug
metrics:
  addr: ":9100"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scratch", cfg.Device.Name)
	assert.Equal(t, int64(1024), cfg.Capacity())
	assert.Equal(t, bufdev.SeekEndConventional, cfg.SeekEndMode())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BUFFDEV_DEVICE_PAGES", "3")
	t.Setenv("BUFFDEV_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Device.Pages)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero pages", "device:\n  pages: 0\n"},
		{"negative page size", "device:\n  pageSize: -1\n"},
		{"bad seek mode", "device:\n  seekEnd: backwards\n"},
		{"bad log level", "log:\n  level: chatty\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
