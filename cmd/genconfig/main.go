// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes example configuration files with every option
// set to its default value.
package main

import (
	"fmt"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/server/audit"
)

const (
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	filePerm       = 0o644

	envFileHeader = `# langcat configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
# Variables already set in the environment take precedence over .env.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# langcat configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
	catalogDirComment = `  # -- Leave empty to serve the catalogs built into the binary.
  # Files are named <Domain>.<language>.<ext>, e.g. Errors.french-utf8.php`
)

// uncommented lists the variables written as active settings.
var uncommented = map[string]bool{
	"LANGCAT_HOST":        true,
	"LANGCAT_PORT":        true,
	"LANGCAT_CATALOG_DIR": true,
}

func main() {
	audit.SetDefaultLogger()

	cfg := &config.ServerConfig{}
	cfg.SetDefaults()

	if err := os.MkdirAll("deploy", 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create deploy directory")
	}

	if err := os.WriteFile(envOutputFile, []byte(envExample(cfg)), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", envOutputFile).Msg("Failed to write .env.example file")
	}

	log.Info().Str("path", envOutputFile).Msg("Successfully generated .env.example")

	content, err := yamlExample(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	if err := os.WriteFile(yamlOutputFile, []byte(content), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", yamlOutputFile).Msg("Failed to write config file")
	}

	log.Info().Str("path", yamlOutputFile).Msg("Successfully generated config.yaml.example")
}

// envValue formats v the way the environment loader parses it.
func envValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range v.Len() {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	case reflect.Map:
		m, ok := v.Interface().(map[string]string)
		if !ok {
			return ""
		}

		parts := make([]string, 0, len(m))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			parts = append(parts, k+"="+m[k])
		}

		return strings.Join(parts, ",")
	case reflect.String:
		if s := v.String(); strings.ContainsAny(s, " \n") {
			return fmt.Sprintf("%q", s)
		}
	}

	return fmt.Sprint(v.Interface())
}

// envExample renders the .env.example file for cfg.
func envExample(cfg *config.ServerConfig) string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(*cfg)
	typ := val.Type()

	// Iterate over the top-level struct fields.
	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if structValue.Kind() != reflect.Struct || structField.Name == "Build" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", structField.Name)

		innerTyp := structValue.Type()
		for j := range innerTyp.NumField() {
			field := innerTyp.Field(j)

			tag, ok := field.Tag.Lookup("env")
			if !ok {
				continue
			}

			envVarName := strings.Split(tag, ",")[0]
			value := envValue(structValue.Field(j))

			switch {
			case uncommented[envVarName]:
				fmt.Fprintf(&sb, "%s=%s\n", envVarName, value)
			default:
				fmt.Fprintf(&sb, "# %s=%s\n", envVarName, value)
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// yamlExample renders config.yaml.example: every setting commented out
// except the catalog directory.
func yamlExample(cfg *config.ServerConfig) (string, error) {
	var yamlContent strings.Builder

	encoderOpts := []yaml.EncodeOption{
		config.GetDurationEncoderOption(),
		yaml.Indent(2),
		yaml.UseLiteralStyleIfMultiline(true),
	}
	if err := yaml.NewEncoder(&yamlContent, encoderOpts...).Encode(cfg); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "basic:") are treated as section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		if strings.HasPrefix(line, "  dir:") {
			sb.WriteString(catalogDirComment + "\n")
			sb.WriteString(line + "\n")

			continue
		}

		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	return sb.String(), nil
}
