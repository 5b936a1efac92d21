// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/leonelquinteros/gotext"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
)

// Format is a catalog file format, named after its file extension.
type Format string

const (
	FormatPHP  Format = "php"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatPO   Format = "po"
)

var (
	errUnknownFormat = errors.New("unknown catalog format")
	errInvalidJSON   = errors.New("invalid JSON")
	errNotTable      = errors.New("top level value is not a table")
)

// ParseFormat maps a file extension (with or without the leading dot) to
// a Format.
func ParseFormat(ext string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "php":
		return FormatPHP, true
	case "yaml", "yml":
		return FormatYAML, true
	case "toml":
		return FormatTOML, true
	case "json":
		return FormatJSON, true
	case "po":
		return FormatPO, true
	}

	return "", false
}

// Parse reads UTF-8 catalog text in the given format and returns its
// key/template pairs.
func Parse(format Format, data []byte) (map[string]string, error) {
	switch format {
	case FormatPHP:
		return parsePHP(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatPO:
		return parsePO(data), nil
	}

	return nil, fmt.Errorf("%w %q", errUnknownFormat, format)
}

func parseYAML(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	out := make(map[string]string, len(doc))
	flatten(out, "", doc)

	return out, nil
}

func parseTOML(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode TOML: %w", err)
	}

	out := make(map[string]string, len(doc))
	flatten(out, "", doc)

	return out, nil
}

// flatten copies the leaves of a decoded YAML or TOML document into out.
func flatten(out map[string]string, prefix string, v any) {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(out, joinKey(prefix, k), child)
		}
	case map[any]any:
		for k, child := range v {
			flatten(out, joinKey(prefix, fmt.Sprint(k)), child)
		}
	case []any:
		for i, child := range v {
			flatten(out, joinKey(prefix, strconv.Itoa(i)), child)
		}
	case nil:
		out[prefix] = ""
	case string:
		out[prefix] = v
	case bool:
		if v {
			out[prefix] = "1"
		} else {
			out[prefix] = ""
		}
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func joinKey(prefix, k string) string {
	if prefix == "" {
		return k
	}

	return prefix + "_" + k
}

func parseJSON(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errNotTable
	}

	out := make(map[string]string)
	walkJSON(out, "", root)

	return out, nil
}

func walkJSON(out map[string]string, prefix string, v gjson.Result) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			walkJSON(out, joinKey(prefix, key.String()), value)

			return true
		})
	case v.IsArray():
		for i, value := range v.Array() {
			walkJSON(out, joinKey(prefix, strconv.Itoa(i)), value)
		}
	case v.Type == gjson.True:
		out[prefix] = "1"
	case v.Type == gjson.False, v.Type == gjson.Null:
		out[prefix] = ""
	default:
		out[prefix] = v.String()
	}
}

// parsePO reads a gettext catalog where msgid is the key and msgstr the
// template. Entries with an empty msgstr are untranslated and skipped.
func parsePO(data []byte) map[string]string {
	po := gotext.NewPo()
	po.Parse(data)

	translations := po.GetDomain().GetTranslations()
	out := make(map[string]string, len(translations))

	for id, tr := range translations {
		if id == "" || tr == nil {
			continue
		}

		if s := tr.Trs[0]; s != "" {
			out[id] = s
		}
	}

	return out
}
