// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lint checks catalog files for problems translators tend to
introduce.

[Load] reads a catalog tree like [source.LoadFS] but keeps going past
undecodable files and malformed templates, reporting them as findings.
[Check] then compares every language against a base language and looks
at the markup inside templates:

  - keys and catalogs missing from a translation
  - placeholders added to or dropped from a translation
  - unbalanced HTML tags
  - markup that the forum's HTML policy would strip
  - entries copied verbatim from the base language (informational)
*/
package lint
