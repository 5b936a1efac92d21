// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// readYAML merges the YAML file at configFilePath into cfg. Unknown keys
// are rejected. A missing file is not an error.
func (cfg *ServerConfig) readYAML(configFilePath string) error {
	if configFilePath == "" {
		return nil
	}

	logger := log.With().Str("path", configFilePath).Logger()

	data, err := os.ReadFile(configFilePath) // #nosec G304 -- Only loading a config file
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info().Msg("No YAML configuration file found, skipping")

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", configFilePath, err)
	}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		// The formatted error quotes the offending lines of the file.
		logger.Error().Msg("Invalid configuration file:\n" + yaml.FormatError(err, false, true))

		return fmt.Errorf("failed to parse YAML from %s: %w", configFilePath, err)
	}

	logger.Info().Msg("Successfully loaded configuration")

	return nil
}

func yamlMarshal(v any) (string, error) {
	b, err := yaml.MarshalWithOptions(v, GetDurationEncoderOption())

	return string(b), err
}
