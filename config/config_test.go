package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foto", "config.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, IconStoreMemory, cfg.IconStore)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers())
	assert.Equal(t, path, cfg.Path())

	require.NoError(t, cfg.Save())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	cfg.IconStore = IconStoreBadger
	cfg.BridgeWorkers = 8
	cfg.JPEGCompression = 0.75
	cfg.JPEGTranPath = "/opt/homebrew/bin/jpegtran"
	require.NoError(t, cfg.Save())

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, IconStoreBadger, got.IconStore)
	assert.Equal(t, 8, got.Workers())
	assert.Equal(t, 0.75, got.JPEGCompression)
	assert.Equal(t, "/opt/homebrew/bin/jpegtran", got.JPEGTranPath)
}

func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level":"debug"}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, IconStoreMemory, cfg.IconStore)
	assert.Equal(t, 4, cfg.BridgeWorkers)
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"unknown store", `{"icon_store":"redis"}`},
		{"unknown level", `{"log_level":"trace"}`},
		{"compression out of range", `{"jpeg_compression":1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestWorkersClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{16, 16},
		{1000, 64},
	}
	for _, tt := range tests {
		cfg := &Config{BridgeWorkers: tt.in}
		assert.Equal(t, tt.want, cfg.Workers(), "workers %d", tt.in)
	}
}
