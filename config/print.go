// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", cfg.Build.Version()).
		Str("go", cfg.Build.GoVersion).
		Str("revision", cfg.Build.Revision()).
		Msg("Starting langcat")

	printableConfig := *cfg

	if printableConfig.Forum.WebmasterEmail != "" {
		printableConfig.Forum.WebmasterEmail = redactedValue
	}

	configYAML, err := yaml.MarshalWithOptions(
		printableConfig,
		GetDurationEncoderOption(),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().
		Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}
