// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/request_context"
)

// ErrBadRequest marks errors caused by malformed client input.
var ErrBadRequest = errors.New("bad request")

// ErrTooManyRequests is returned by the limiter when a client is over its rate.
var ErrTooManyRequests = errors.New("too many requests")

// ErrNotFound is returned for paths that match no route.
var ErrNotFound = errors.New("no such route")

var errNoResolver = errors.New("no resolver attached to request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// errorResponse is the body written for failed requests.
type errorResponse struct {
	Error       string `json:"error"`
	Kind        string `json:"kind"`
	Placeholder string `json:"placeholder,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// StatusFor maps a handler error to the HTTP status code reported to the client.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, i18n.ErrCatalogNotFound), errors.Is(err, i18n.ErrKeyNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, i18n.ErrMissingParameter):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func kindFor(err error, status int) string {
	if kind := i18n.Kind(err); kind != "" {
		return kind
	}

	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "internal"
	}
}

// ErrorPage writes the JSON error body for the request's RequestError and
// StatusCode.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	ctx := request_context.FromRequest(r)

	body := errorResponse{
		Error:     http.StatusText(ctx.StatusCode),
		Kind:      kindFor(ctx.RequestError, ctx.StatusCode),
		RequestID: ctx.RequestID,
	}

	// Internal errors are logged but not shown.
	if ctx.RequestError != nil && ctx.StatusCode < http.StatusInternalServerError {
		body.Error = ctx.RequestError.Error()
	}

	var rerr *i18n.Error
	if errors.As(ctx.RequestError, &rerr) {
		body.Placeholder = rerr.Placeholder
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, ctx.StatusCode, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}

func resolverFor(r *http.Request) (*i18n.Resolver, error) {
	resolver := i18n.ResolverFrom(r.Context())
	if resolver == nil {
		return nil, errNoResolver
	}

	return resolver, nil
}

// NotFound answers requests that match no other route.
func NotFound(_ http.ResponseWriter, r *http.Request) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, r.Method, r.URL.Path)
}

// WriteError writes the JSON error body for err outside of CatchError.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := request_context.FromRequest(r)
	ctx.RequestError = err
	ctx.StatusCode = StatusFor(err)

	ErrorPage(w, r)
}
