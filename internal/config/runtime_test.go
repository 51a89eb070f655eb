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
	defaults := DefaultRuntimeConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyLogLevel, defaults.LogLevel, "")
	fs.String(KeyLogFormat, defaults.LogFormat, "")
	fs.Int(KeyWorkers, defaults.Workers, "")
	fs.String(KeyOutput, defaults.Output, "")
	return fs
}

func TestLoadRuntimeConfigDefaults(t *testing.T) {
	cfg, err := LoadRuntimeConfig(NewViper(), testFlags(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRuntimeConfig(), cfg)
}

func TestLoadRuntimeConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: debug\nworkers: 3\nout: file.csv\n"), 0o600))
	t.Setenv("SNC_WORKERS", "5")
	t.Setenv("SNC_LOG_FORMAT", "json")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--out", "flag.csv"}))

	cfg, err := LoadRuntimeConfig(NewViper(), fs, path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "file overrides default")
	assert.Equal(t, "json", cfg.LogFormat, "env overrides default")
	assert.Equal(t, 5, cfg.Workers, "env overrides file")
	assert.Equal(t, "flag.csv", cfg.Output, "flag overrides file")
}

func TestLoadRuntimeConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Test case 1: unknown level", env: map[string]string{"SNC_LOG_LEVEL": "loud"}},
		{name: "Test case 2: unknown format", env: map[string]string{"SNC_LOG_FORMAT": "xml"}},
		{name: "Test case 3: no workers", env: map[string]string{"SNC_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadRuntimeConfig(NewViper(), nil, "")
			assert.Error(t, err)
		})
	}
}

func TestLoadRuntimeConfigMissingFile(t *testing.T) {
	_, err := LoadRuntimeConfig(NewViper(), nil, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
