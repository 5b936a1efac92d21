// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"maps"
	"sync/atomic"

	"golang.org/x/text/language"

	"codeberg.org/forumlang/langcat/catalog"
)

// Options configure a [Resolver].
type Options struct {
	// Context holds values for named placeholders that are not specific
	// to a call, such as FORUMNAME or SCRIPTURL. Values passed to
	// Resolve take precedence.
	Context Vars

	// DefaultLanguage is the preferred result of [Resolver.Match] when
	// nothing else matches. It is never used as a fallback by Resolve.
	DefaultLanguage string

	// ReportMissing enables warnings for failed lookups made through
	// [Resolver.Text] and [Resolver.Report].
	ReportMissing bool
}

// Resolver looks up templates and substitutes their placeholders.
// It is safe for concurrent use.
type Resolver struct {
	store           *Store
	context         Vars
	defaultLanguage string
	reporter        *reporter
	matcher         atomic.Pointer[languageMatcher]
}

// New returns a Resolver reading snapshots from store.
func New(store *Store, opts Options) *Resolver {
	return &Resolver{
		store:           store,
		context:         maps.Clone(opts.Context),
		defaultLanguage: opts.DefaultLanguage,
		reporter:        newReporter(opts.ReportMissing),
	}
}

// Resolve returns the template stored for key in the catalog of language
// and domain, with every placeholder replaced.
//
// {NAME} placeholders read params first and then the resolver context.
// %n$ placeholders read the n-th positional value of params. The result is
// either fully substituted or an error: *[Error] wrapping
// [ErrCatalogNotFound], [ErrKeyNotFound] or [ErrMissingParameter].
// No other language is consulted when a lookup fails.
func (r *Resolver) Resolve(language, domain, key string, params Params) (string, error) {
	tmpl, catalogFound, keyFound := r.store.Load().Lookup(language, domain, key)

	switch {
	case !catalogFound:
		return "", &Error{Err: ErrCatalogNotFound, Language: language, Domain: domain, Key: key}
	case !keyFound:
		return "", &Error{Err: ErrKeyNotFound, Language: language, Domain: domain, Key: key}
	}

	out, err := tmpl.Execute(func(p catalog.Placeholder) (any, bool) {
		if p.Named() {
			if params != nil {
				if v, ok := params.Named(p.Name); ok {
					return v, true
				}
			}

			v, ok := r.context[p.Name]

			return v, ok
		}

		if params == nil {
			return nil, false
		}

		return params.Positional(p.Index)
	})
	if err != nil {
		var unresolved *catalog.UnresolvedError
		if errors.As(err, &unresolved) {
			return "", &Error{
				Err:         ErrMissingParameter,
				Language:    language,
				Domain:      domain,
				Key:         key,
				Placeholder: unresolved.Placeholder.String(),
			}
		}

		return "", err
	}

	return out, nil
}

// Text is like Resolve but never fails. When resolution fails the error is
// reported and the key is returned visibly wrapped as "⟦domain.key⟧".
func (r *Resolver) Text(language, domain, key string, params Params) string {
	out, err := r.Resolve(language, domain, key, params)
	if err != nil {
		r.Report(err)

		return markMissing(domain, key)
	}

	return out
}

func markMissing(domain, key string) string {
	return "⟦" + domain + "." + key + "⟧"
}

// Has reports whether a template exists for key.
func (r *Resolver) Has(language, domain, key string) bool {
	_, _, ok := r.store.Load().Lookup(language, domain, key)

	return ok
}

// Snapshot returns the catalog snapshot currently in use.
func (r *Resolver) Snapshot() *catalog.Set {
	return r.store.Load()
}

// Languages returns the loaded language ids, sorted.
func (r *Resolver) Languages() []string {
	return r.store.Load().Languages()
}

// Tags returns the BCP 47 tag of each loaded language, in the order of
// [Resolver.Languages].
func (r *Resolver) Tags() []language.Tag {
	ids := r.Languages()

	out := make([]language.Tag, len(ids))
	for i, id := range ids {
		out[i] = TagFor(id)
	}

	return out
}

// DefaultLanguage returns the configured default language id.
func (r *Resolver) DefaultLanguage() string {
	return r.defaultLanguage
}

// Match picks the loaded language that best fits preferred, which may hold
// catalog ids ("french-utf8"), BCP 47 tags or Accept-Language values.
// Exact ids win. Without a match the default language is returned if it is
// loaded. It returns "" when nothing is loaded.
func (r *Resolver) Match(preferred ...string) string {
	set := r.store.Load()

	m := r.matcher.Load()
	if m == nil || m.generation != set.Generation() {
		m = newLanguageMatcher(set.Generation(), set.Languages(), r.defaultLanguage)
		r.matcher.Store(m)
	}

	return m.match(preferred...)
}
