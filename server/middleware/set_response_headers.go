// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"

	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/server/request_context"
)

// baseHeaders defines the default headers to be set in responses.
//
// Langcat-Version and Langcat-Revision are added dynamically in SetResponseHeaders.
var baseHeaders = http.Header{
	"Referrer-Policy":         {"no-referrer"},
	"X-Frame-Options":         {"DENY"},
	"X-Content-Type-Options":  {"nosniff"},
	"Content-Security-Policy": {"default-src 'none'; frame-ancestors 'none'"},
	"Vary":                    {"Accept-Language, Cookie"},
}

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	headers.Set("Langcat-Version", config.Global.Build.Version())
	headers.Set("Langcat-Revision", config.Global.Build.Revision())

	if id := request_context.FromRequest(r).RequestID; id != "" {
		headers.Set("X-Request-Id", id)
	}

	next.ServeHTTP(w, r)
}
