// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"errors"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

var errUnsupportedOutput = errors.New("unsupported output format")

// Encode writes entries as a flat YAML or TOML table with keys in sorted
// order. Other formats can only be read.
func Encode(format Format, entries map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	switch format {
	case FormatYAML:
		doc := make(yaml.MapSlice, 0, len(keys))
		for _, k := range keys {
			doc = append(doc, yaml.MapItem{Key: k, Value: entries[k]})
		}

		out, err := yaml.MarshalWithOptions(doc, yaml.UseLiteralStyleIfMultiline(true))
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}

		return out, nil
	case FormatTOML:
		out, err := toml.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w %q", errUnsupportedOutput, format)
}
