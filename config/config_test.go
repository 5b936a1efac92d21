// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests touching the environment or working directory do not run in parallel.

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "Valid configuration",
			env: map[string]string{
				"LANGCAT_HOST":     "0.0.0.0",
				"LANGCAT_PORT":     "9000",
				"LANGCAT_CHARSETS": "french=ISO-8859-1, german=windows-1252",
			},
		},
		{
			name:    "Invalid port",
			env:     map[string]string{"LANGCAT_PORT": "http"},
			wantErr: true,
		},
		{
			name:    "Invalid script URL",
			env:     map[string]string{"LANGCAT_SCRIPT_URL": "forum.example.org/index.php"},
			wantErr: true,
		},
		{
			name:    "Unknown charset",
			env:     map[string]string{"LANGCAT_DEFAULT_CHARSET": "klingon-8"},
			wantErr: true,
		},
		{
			name:    "Malformed charset map",
			env:     map[string]string{"LANGCAT_CHARSETS": "french"},
			wantErr: true,
		},
		{
			name: "Limiter enabled without rate",
			env: map[string]string{
				"LANGCAT_LIMITER":      "true",
				"LANGCAT_LIMITER_RATE": "0",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var cfg ServerConfig

			err := cfg.LoadConfig("")
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "0.0.0.0", cfg.Basic.Host)
			assert.Equal(t, "9000", cfg.Basic.Port)
			assert.Equal(t, map[string]string{"french": "ISO-8859-1", "german": "windows-1252"}, cfg.Catalog.Charsets)
		})
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
basic:
  port: "8500"
catalog:
  defaultLanguage: french-utf8
  reloadInterval: 5m
forum:
  name: Example Forum
  scriptUrl: https://forum.example.org/index.php/
`), 0o600))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LANGCAT_FORUM_NAME=From Dotenv\nLANGCAT_PORT=8600\n"), 0o600))

	// The real environment beats .env, which beats the YAML file.
	t.Setenv("LANGCAT_PORT", "8700")
	t.Cleanup(func() { os.Unsetenv("LANGCAT_FORUM_NAME") })

	var cfg ServerConfig
	require.NoError(t, cfg.LoadConfig(yamlPath))

	assert.Equal(t, "8700", cfg.Basic.Port)
	assert.Equal(t, "From Dotenv", cfg.Forum.Name)
	assert.Equal(t, "french-utf8", cfg.Catalog.DefaultLanguage)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.ReloadInterval)
	assert.Equal(t, "https://forum.example.org/index.php", cfg.Forum.ScriptURL)
}

func TestLoadConfigRejectsUnknownYAMLFields(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  directory: ./languages\n"), 0o600))

	var cfg ServerConfig
	assert.Error(t, cfg.LoadConfig(""))
}

func TestConfigFilePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Equal(t, "flag.yaml", configFilePath("flag.yaml"))
	assert.Equal(t, "./config.yaml", configFilePath(""))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), nil, 0o600))
	assert.Equal(t, "./config.yml", configFilePath(""))

	t.Setenv("LANGCAT_CONFIGFILE", "/etc/langcat.yaml")
	assert.Equal(t, "/etc/langcat.yaml", configFilePath(""))
	assert.Equal(t, "flag.yaml", configFilePath("flag.yaml"))
}

func TestValidateAndSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(cfg *ServerConfig)
		want   error
	}{
		{"defaults", func(*ServerConfig) {}, nil},
		{"empty port gets default", func(cfg *ServerConfig) { cfg.Basic.Port = "" }, nil},
		{"port out of range", func(cfg *ServerConfig) { cfg.Basic.Port = "70000" }, errInvalidPort},
		{"no default language", func(cfg *ServerConfig) { cfg.Catalog.DefaultLanguage = "" }, errNoDefaultLanguage},
		{"unknown charset", func(cfg *ServerConfig) { cfg.Catalog.Charsets = map[string]string{"x": "nope"} }, errUnknownCharset},
		{"negative concurrency", func(cfg *ServerConfig) { cfg.Catalog.LoadConcurrency = -1 }, errNegativeConcurrency},
		{"negative reload", func(cfg *ServerConfig) { cfg.Catalog.ReloadInterval = -time.Second }, errNegativeReloadInterval},
		{"bad email", func(cfg *ServerConfig) { cfg.Forum.WebmasterEmail = "not an address" }, errInvalidWebmasterEmail},
		{"bad log level", func(cfg *ServerConfig) { cfg.Log.Level = "loud" }, errInvalidLogLevel},
		{"bad log format", func(cfg *ServerConfig) { cfg.Log.Format = "xml" }, errInvalidLogFormat},
		{"limiter burst", func(cfg *ServerConfig) { cfg.Limiter.Enabled = true; cfg.Limiter.Burst = 0 }, errInvalidLimiterBurst},
		{"limiter expiry", func(cfg *ServerConfig) { cfg.Limiter.Enabled = true; cfg.Limiter.Expiry = 0 }, errInvalidLimiterExpiry},
		{"disabled limiter is not checked", func(cfg *ServerConfig) { cfg.Limiter.Rate = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var cfg ServerConfig

			cfg.SetDefaults()
			tt.modify(&cfg)

			err := cfg.validateAndSet()
			if tt.want == nil {
				require.NoError(t, err)
				assert.NotEmpty(t, cfg.Basic.Port)

				return
			}

			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestForumContext(t *testing.T) {
	t.Parallel()

	var cfg ServerConfig

	cfg.SetDefaults()
	cfg.Forum.WebmasterEmail = "admin@example.org"

	got := cfg.ForumContext()
	assert.Equal(t, "My Community", got["FORUMNAME"])
	assert.Equal(t, "admin@example.org", got["WEBMASTEREMAIL"])
	assert.NotContains(t, got, "FORUMVERSION")

	opts := cfg.SourceOptions()
	assert.Equal(t, "ISO-8859-1", opts.DefaultCharset)
	assert.Equal(t, "ISO-8859-1", opts.Charsets["french"])
}

func TestGetDurationEncoderOption(t *testing.T) {
	t.Parallel()

	var cfg ServerConfig

	cfg.SetDefaults()
	cfg.Limiter.Expiry = 90 * time.Second

	out, err := yamlMarshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "expiry: 1m30s")
}

func TestLoader(t *testing.T) {
	t.Parallel()

	var cfg ServerConfig

	cfg.SetDefaults()

	set, err := cfg.Loader()(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"english", "french", "french-utf8"}, set.Languages())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Errors.german.yaml"), []byte("no_access: Zugriff verweigert\n"), 0o600))

	cfg.Catalog.Dir = dir

	set, err = cfg.Loader()(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"german"}, set.Languages())

	tmpl, _, keyFound := set.Lookup("german", "Errors", "no_access")
	require.True(t, keyFound)
	assert.Equal(t, "Zugriff verweigert", tmpl.Raw())
}
