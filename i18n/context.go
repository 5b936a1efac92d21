// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type contextKeyType int

const (
	languageKey contextKeyType = iota
	resolverKey
)

const (
	// LangParam is the URL query parameter read by [Resolver.FromRequest].
	LangParam = "lang"

	// LangCookie is the cookie read by [Resolver.FromRequest].
	LangCookie = "langcat_lang"
)

// WithLanguage stores the catalog language id in ctx.
func WithLanguage(ctx context.Context, language string) context.Context {
	return context.WithValue(ctx, languageKey, language)
}

// LanguageFrom returns the language id stored in ctx, or "" if none is
// present. ctx may be nil.
func LanguageFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	language, _ := ctx.Value(languageKey).(string)

	return language
}

// WithResolver stores r in ctx for use by [Message].
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, resolverKey, r)
}

// ResolverFrom returns the Resolver stored in ctx, or nil.
func ResolverFrom(ctx context.Context) *Resolver {
	if ctx == nil {
		return nil
	}

	r, _ := ctx.Value(resolverKey).(*Resolver)

	return r
}

// FromRequest returns the loaded language that best fits the preferences
// of req, inspected in priority order:
// 1) query parameter [LangParam]
// 2) cookie [LangCookie]
// 3) Accept-Language header
//
// If [LangParam] is "auto" (case-insensitive) the cookie is ignored.
func (r *Resolver) FromRequest(req *http.Request) string {
	if req == nil {
		return r.Match()
	}

	q := req.URL.Query().Get(LangParam)
	auto := strings.EqualFold(q, "auto")

	preferred := make([]string, 0, 3)
	if q != "" && !auto {
		preferred = append(preferred, q)
	}

	if !auto {
		if c, err := req.Cookie(LangCookie); err == nil {
			if v, err := url.QueryUnescape(c.Value); err == nil && v != "" {
				preferred = append(preferred, v)
			}
		}
	}

	if al := req.Header.Get("Accept-Language"); al != "" {
		preferred = append(preferred, al)
	}

	return r.Match(preferred...)
}

// WithRequest installs the language chosen by [Resolver.FromRequest] and
// the resolver itself in ctx.
func (r *Resolver) WithRequest(ctx context.Context, req *http.Request) context.Context {
	return WithResolver(WithLanguage(ctx, r.FromRequest(req)), r)
}
