// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n resolves forum messages from loaded catalogs.

A catalog holds the templates of one language and one domain, such as
the "Errors" strings of "french-utf8". Templates use two placeholder
syntaxes, both handled by package catalog when files are loaded:

	Dear {REALNAME},                     named, filled from Vars
	This ban trigger (%1$s) exists.      positional, filled from Args

# Quick start

	store, err := i18n.Setup(ctx, func(ctx context.Context) (*catalog.Set, error) {
		return source.LoadFS(ctx, languages.FS, ".", source.Options{Charsets: languages.Charsets})
	})

	r := i18n.New(store, i18n.Options{
		Context: i18n.Vars{"FORUMNAME": "My Community", "SCRIPTURL": "https://example.org/index.php"},
	})

	s, err := r.Resolve("english", "Errors", "email_in_use", i18n.Args{"bob@example.com"})

Values shared by every message, such as the forum name, are given once in
[Options.Context]. Values passed to Resolve win over them.

# Failures

Resolve returns an *[Error] wrapping [ErrCatalogNotFound], [ErrKeyNotFound]
or [ErrMissingParameter]. It never falls back to another language and
never returns partially substituted text.

Page renderers that prefer text over errors use [Resolver.Text] or the
[Message] component. Failed lookups are then shown as "⟦domain.key⟧" and,
when ReportMissing is enabled, logged once per language, domain and key.

# Reloading

[Store] swaps whole catalog snapshots. Reload keeps the current snapshot
when loading fails.
*/
package i18n
