// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/forumlang/langcat/config"
)

func defaults() *config.ServerConfig {
	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	return cfg
}

func TestEnvExample(t *testing.T) {
	t.Parallel()

	out := envExample(defaults())

	for _, line := range []string{
		"## Basic\n",
		"\nLANGCAT_HOST=localhost\n",
		"\nLANGCAT_PORT=8383\n",
		"\nLANGCAT_CATALOG_DIR=\n",
		"\n# LANGCAT_CHARSETS=french=ISO-8859-1\n",
		"\n# LANGCAT_LIMITER_EXPIRY=10m0s\n",
		"\n# LANGCAT_LOG_OUTPUTS=/dev/stderr\n",
		"\n# LANGCAT_REGARDS=\"Regards,\\nThe My Community Team.\"\n",
	} {
		assert.Contains(t, out, line)
	}

	assert.NotContains(t, out, "Build")
}

func TestYAMLExample(t *testing.T) {
	t.Parallel()

	out, err := yamlExample(defaults())
	require.NoError(t, err)

	assert.Contains(t, out, "\ncatalog:\n")
	assert.Contains(t, out, catalogDirComment+"\n  dir: ")
	assert.Contains(t, out, "\n  # port: ")
	assert.Contains(t, out, "\n  # expiry: 10m0s\n")
}
