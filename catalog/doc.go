// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog holds the in-memory form of the forum language tables.

A [Set] is an immutable snapshot of every loaded [Catalog]. A catalog is
identified by a language (for example "english", "french-utf8") and a
domain, which is the topic of the originating file ("Errors", "Profile",
"EmailTemplates", "index"). Each catalog maps keys to parsed [Template]s.

# Placeholders

Language files were authored with two placeholder syntaxes:

	{FORUMNAME}          brace-named, filled from named values
	%1$s, %2$d, %s, %05d printf-positional, filled from ordered values

[Parse] recognises both at load time and turns the template into a list of
literal and placeholder segments, so rendering never scans text again.
A brace group only counts as a placeholder when its name is upper case
([A-Z][A-Z0-9_]*); anything else (JavaScript bodies, CSS, prose) stays
literal. A percent sign that does not start a valid conversion is kept
as written, and "%%" renders a single "%".

Templates keep HTML markup and newlines exactly as authored. Escaping is
the caller's concern.
*/
package catalog
