// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/server/audit"
	"codeberg.org/forumlang/langcat/server/request_context"
	"codeberg.org/forumlang/langcat/server/routes"
)

// CatchError wraps HTTP handlers that return an error, providing centralized error handling,
// response buffering, and request logging.
//
// The handler's output is buffered. When it returns an error, the buffered
// output is discarded and a JSON error body is written instead, with the
// status chosen by routes.StatusFor. Otherwise the buffered response is
// passed through.
//
// The completed request is logged via the audit package.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			RequestID: ctx.RequestID,
			Method:    r.Method,
			URL:       r.URL.String(),
			Language:  ctx.Language,
		}

		_ = span.Begin(r.Context())

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		// Metrics must be final before the status line is written.
		span.End()

		ctx.RequestError = err

		if err != nil {
			ctx.StatusCode = routes.StatusFor(err)

			routes.ErrorPage(w, r)
		} else {
			if recorder.Code == 0 {
				recorder.Code = http.StatusOK
			}

			ctx.StatusCode = recorder.Code
			span.Size = recorder.Body.Len()

			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}
		}

		span.StatusCode = ctx.StatusCode
		span.Error = ctx.RequestError

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}
