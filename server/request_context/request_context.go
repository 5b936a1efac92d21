// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package request_context provides per-request state management for HTTP handlers.

This package is separate because Go disallows a cyclic import graph.
*/
package request_context

import (
	"context"
	"net/http"

	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/idgen"
)

// RequestContext carries request-scoped data through the middleware chain.
type RequestContext struct {
	// RequestID is an identifier for tracing requests.
	RequestID string

	// Holds any error returned by the route handler.
	//
	// Populated by middleware.CatchError.
	RequestError error

	// HTTP status code sent in the response. Defaults to 200 OK.
	StatusCode int

	// Language is the catalog language negotiated for this request.
	Language string
}

type requestContextKeyType struct{}

var requestContextKey = requestContextKeyType{}

// WithRequestContext initializes a new request context and attaches it to
// the parent context. The resolver and the negotiated language are attached
// as well, see i18n.ResolverFrom and i18n.LanguageFrom.
func WithRequestContext(ctx context.Context, r *http.Request, resolver *i18n.Resolver) context.Context {
	rc := RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
	}

	if resolver != nil {
		ctx = resolver.WithRequest(ctx, r)
		rc.Language = i18n.LanguageFrom(ctx)
	}

	return context.WithValue(ctx, requestContextKey, &rc)
}

// FromContext extracts the RequestContext from a context, always returning
// a valid pointer.
//
// If no context is found, returns a zero-value instance.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey).(*RequestContext); ok {
		return rc
	}

	return &RequestContext{}
}

// FromRequest is a convenience wrapper for extracting RequestContext
// directly from HTTP requests.
func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
