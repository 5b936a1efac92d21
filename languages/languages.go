// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package languages embeds the default forum catalogs.
//
// The french pack is stored in ISO-8859-1 as it was originally distributed;
// french-utf8 holds the same text in UTF-8. Some French strings were never
// translated upstream and are kept in English.
package languages

import "embed"

// FS holds one directory per language, each with one file per domain.
//
//go:embed english french french-utf8
var FS embed.FS

// Charsets lists the charset of each embedded language that is not UTF-8.
var Charsets = map[string]string{
	"french": "ISO-8859-1",
}
