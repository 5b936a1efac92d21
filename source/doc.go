// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package source loads catalog files into a [catalog.Set].

Files are named after the catalog they hold:

	<Domain>.<language>.<ext>[.zst|.gz]

for example "Errors.french-utf8.php" or "EmailTemplates.english.yaml.zst".
The name is split at its first dot, so domains never contain dots while
language ids may contain hyphens. Supported extensions are php (legacy
$txt tables), yaml/yml, toml, json and po.

Input that is valid UTF-8 is used as is. Anything else is decoded with the
charset configured for its language, ISO-8859-1 unless told otherwise.

Structured formats are flat key/value tables; nested tables are flattened
by joining keys with "_", so

	admin_notify:
	  subject: A new member has joined

defines admin_notify_subject.
*/
package source
