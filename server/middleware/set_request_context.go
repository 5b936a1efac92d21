// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/request_context"
)

// WithRequestContext returns a middleware that attaches a RequestContext,
// the resolver and the negotiated language to each request.
func WithRequestContext(resolver *i18n.Resolver) Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		next.ServeHTTP(w, r.WithContext(request_context.WithRequestContext(r.Context(), r, resolver)))
	}
}
