// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
)

// ServerTiming returns a middleware that collects the metrics handlers
// record with servertiming.FromContext and sends them in a Server-Timing
// header. When disabled, no timing is attached to the request and handlers
// skip their metrics.
func ServerTiming(enabled bool) Middleware {
	if !enabled {
		return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
			next.ServeHTTP(w, r)
		}
	}

	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		servertiming.Middleware(next, nil).ServeHTTP(w, r)
	}
}
